package cmd

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/Alturino/storefront/cart"
	"github.com/Alturino/storefront/internal/config"
	"github.com/Alturino/storefront/internal/constants"
	"github.com/Alturino/storefront/internal/log"
	orderClient "github.com/Alturino/storefront/order/pkg/client"
	productClient "github.com/Alturino/storefront/product/pkg/client"
)

// ProductFinder loads the product snapshot stored in the cart.
type ProductFinder interface {
	FindProductById(c context.Context, id uuid.UUID) (cart.Product, error)
}

type productLookup struct {
	client *productClient.Client
}

func (p productLookup) FindProductById(c context.Context, id uuid.UUID) (cart.Product, error) {
	product, err := p.client.FindProductById(c, id)
	if err != nil {
		return cart.Product{}, err
	}
	return cart.Product{
		ID:    product.ID,
		Name:  product.Name,
		Price: product.Price,
		Shop:  cart.Shop{ID: product.Shop.ID, Name: product.Shop.Name},
	}, nil
}

type cartOptions struct {
	configName string
	baseURL    string
	token      string
	userID     string
	cartFile   string
	verbose    bool
}

type dependencies struct {
	store    *cart.Store
	products ProductFinder
	orders   cart.OrderCreator
	client   config.Client
}

func (o *cartOptions) resolve(c context.Context) config.Client {
	resolved := config.Get(c, o.configName).Client
	if o.baseURL != "" {
		resolved.BaseURL = o.baseURL
	}
	if o.token != "" {
		resolved.Token = o.token
	}
	if o.userID != "" {
		resolved.UserID = o.userID
	}
	if o.cartFile != "" {
		resolved.CartFile = o.cartFile
	}
	if resolved.CartFile == "" {
		resolved.CartFile = ".storefront/cart.json"
	}
	return resolved
}

// NewCartCommand builds `cart` and its subcommands backed by a json file cart.
func NewCartCommand() *cobra.Command {
	options := &cartOptions{}
	var deps dependencies

	command := &cobra.Command{
		Use:   "cart",
		Short: "Manage the local shopping cart and check it out",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger := log.Console(cmd.ErrOrStderr(), options.verbose).
				With().
				Str(constants.KEY_APP_NAME, constants.APP_CART_CLIENT).
				Logger()
			c := logger.WithContext(cmd.Context())
			cmd.SetContext(c)

			resolved := options.resolve(c)
			deps = dependencies{
				store:    cart.NewStore(cart.NewFileStorage(resolved.CartFile)),
				products: productLookup{client: productClient.New(resolved.BaseURL, nil)},
				orders:   orderClient.New(resolved.BaseURL, nil),
				client:   resolved,
			}
			return nil
		},
	}
	command.PersistentFlags().StringVar(&options.configName, "config", "storefront-cart", "config file name under ./env")
	command.PersistentFlags().StringVar(&options.baseURL, "base-url", "", "storefront api base url")
	command.PersistentFlags().StringVar(&options.token, "token", "", "bearer token of the signed in user")
	command.PersistentFlags().StringVar(&options.userID, "user-id", "", "id of the signed in user")
	command.PersistentFlags().StringVar(&options.cartFile, "cart-file", "", "path of the cart file")
	command.PersistentFlags().BoolVarP(&options.verbose, "verbose", "v", false, "log debug output")

	command.AddCommand(
		newAddCommand(&deps),
		newListCommand(&deps),
		newCountCommand(&deps),
		newUpdateCommand(&deps),
		newRemoveCommand(&deps),
		newClearCommand(&deps),
		newCheckoutCommand(&deps),
	)
	return command
}

func newAddCommand(deps *dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "add <productId>",
		Short: "Add one unit of a product to the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			productID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid product id=%s with error=%w", args[0], err)
			}
			product, err := deps.products.FindProductById(cmd.Context(), productID)
			if err != nil {
				return err
			}
			if err = deps.store.AddItem(cmd.Context(), product); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %s, cart has %d items\n", product.Name, deps.store.ItemCount(cmd.Context()))
			return nil
		},
	}
}

func printLines(w io.Writer, lines []cart.Line) {
	if len(lines) == 0 {
		fmt.Fprintln(w, "cart is empty")
		return
	}
	total := decimal.Zero
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tPRODUCT\tSHOP\tPRICE\tQTY\tSUBTOTAL")
	for i, line := range lines {
		fmt.Fprintf(
			tw,
			"%d\t%s\t%s\t%s\t%d\t%s\n",
			i,
			line.Product.Name,
			line.Product.Shop.Name,
			line.Product.Price.StringFixed(2),
			line.Quantity,
			line.Subtotal().StringFixed(2),
		)
		total = total.Add(line.Subtotal())
	}
	fmt.Fprintf(tw, "\t\t\t\tTOTAL\t%s\n", total.StringFixed(2))
	tw.Flush()
}

func newListCommand(deps *dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show the cart lines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			printLines(cmd.OutOrStdout(), deps.store.GetCart(cmd.Context()))
			return nil
		},
	}
}

func newCountCommand(deps *dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "count",
		Short: "Print the number of cart lines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), deps.store.ItemCount(cmd.Context()))
			return nil
		},
	}
}

func newUpdateCommand(deps *dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "update <index> <quantity>",
		Short: "Set the quantity of a cart line",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid index=%s with error=%w", args[0], err)
			}
			quantity, err := strconv.ParseInt(args[1], 10, 32)
			if err != nil {
				return fmt.Errorf("invalid quantity=%s with error=%w", args[1], err)
			}
			if err = deps.store.UpdateQuantity(cmd.Context(), index, int32(quantity)); err != nil {
				return err
			}
			printLines(cmd.OutOrStdout(), deps.store.GetCart(cmd.Context()))
			return nil
		},
	}
}

func newRemoveCommand(deps *dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <index>",
		Short: "Remove a cart line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid index=%s with error=%w", args[0], err)
			}
			remaining, err := deps.store.RemoveItem(cmd.Context(), index)
			if err != nil {
				return err
			}
			printLines(cmd.OutOrStdout(), remaining)
			return nil
		},
	}
}

func newClearCommand(deps *dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := deps.store.Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "cart cleared")
			return nil
		},
	}
}

func newCheckoutCommand(deps *dependencies) *cobra.Command {
	params := cart.CheckoutParams{}
	command := &cobra.Command{
		Use:   "checkout",
		Short: "Place one order per shop in the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := uuid.Parse(deps.client.UserID)
			if err != nil {
				return fmt.Errorf("invalid user id=%s with error=%w", deps.client.UserID, err)
			}
			params.UserID = userID
			params.Credentials = orderClient.Credentials{Token: deps.client.Token}

			orders, err := cart.Checkout(cmd.Context(), deps.store, deps.orders, params)
			for _, order := range orders {
				fmt.Fprintf(
					cmd.OutOrStdout(),
					"placed order %s for shop %s amount %s status %s\n",
					order.ID,
					order.ShopID,
					order.Amount.StringFixed(2),
					order.Status,
				)
			}
			return err
		},
	}
	flags := command.Flags()
	flags.StringVar(&params.CustomerName, "name", "", "customer name")
	flags.StringVar(&params.Email, "email", "", "customer email")
	flags.StringVar(&params.PaymentToken, "payment-token", "", "payment token from the payment provider")
	flags.StringVar(&params.DeliveryAddress.Street, "street", "", "delivery street")
	flags.StringVar(&params.DeliveryAddress.City, "city", "", "delivery city")
	flags.StringVar(&params.DeliveryAddress.State, "state", "", "delivery state")
	flags.StringVar(&params.DeliveryAddress.Zipcode, "zipcode", "", "delivery zipcode")
	flags.StringVar(&params.DeliveryAddress.Country, "country", "", "delivery country")
	command.MarkFlagRequired("name")
	command.MarkFlagRequired("email")
	command.MarkFlagRequired("payment-token")
	return command
}
