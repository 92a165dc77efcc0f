package repository

import (
	"encoding/json"
	"math/big"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	orderResponse "github.com/Alturino/storefront/order/pkg/response"
	productResponse "github.com/Alturino/storefront/product/pkg/response"
	shopResponse "github.com/Alturino/storefront/shop/pkg/response"
	userResponse "github.com/Alturino/storefront/user/pkg/response"
)

func NumericFromDecimal(d decimal.Decimal) pgtype.Numeric {
	return pgtype.Numeric{
		Int:              d.Coefficient(),
		Exp:              d.Exponent(),
		InfinityModifier: pgtype.Finite,
		Valid:            true,
	}
}

func DecimalFromNumeric(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid || n.Int == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(new(big.Int).Set(n.Int), n.Exp)
}

func (p Product) Response() productResponse.Product {
	return productResponse.Product{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		Price:       DecimalFromNumeric(p.Price),
		Quantity:    p.Quantity,
		Shop:        productResponse.Shop{ID: p.ShopID, Name: p.ShopName},
		HasImage:    p.ImageContentType != "",
		CreatedAt:   p.CreatedAt.Time,
		UpdatedAt:   p.UpdatedAt.Time,
	}
}

func (s Shop) Response() shopResponse.Shop {
	return shopResponse.Shop{
		ID:          s.ID,
		OwnerID:     s.OwnerID,
		Name:        s.Name,
		Description: s.Description,
		CreatedAt:   s.CreatedAt.Time,
		UpdatedAt:   s.UpdatedAt.Time,
	}
}

func (u User) Response() userResponse.User {
	return userResponse.User{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Seller:    u.Seller,
		CreatedAt: u.CreatedAt.Time,
		UpdatedAt: u.UpdatedAt.Time,
	}
}

func (l OrderLine) Response() orderResponse.Line {
	return orderResponse.Line{
		ID:          l.ID,
		ProductID:   l.ProductID,
		ProductName: l.ProductName,
		Price:       DecimalFromNumeric(l.Price),
		Quantity:    l.Quantity,
		Status:      l.Status,
	}
}

func (o Order) Response(lines []OrderLine) (orderResponse.Order, error) {
	address := orderResponse.Address{}
	if len(o.DeliveryAddress) > 0 {
		if err := json.Unmarshal(o.DeliveryAddress, &address); err != nil {
			return orderResponse.Order{}, err
		}
	}
	resLines := make([]orderResponse.Line, 0, len(lines))
	for _, line := range lines {
		resLines = append(resLines, line.Response())
	}
	return orderResponse.Order{
		ID:              o.ID,
		UserID:          o.UserID,
		ShopID:          o.ShopID,
		CustomerName:    o.CustomerName,
		Email:           o.Email,
		DeliveryAddress: address,
		Amount:          DecimalFromNumeric(o.Amount),
		Status:          o.Status,
		Lines:           resLines,
		CreatedAt:       o.CreatedAt.Time,
		UpdatedAt:       o.UpdatedAt.Time,
	}, nil
}
