package controller

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	productErrors "github.com/Alturino/storefront/product/internal/errors"
	"github.com/Alturino/storefront/product/pkg/request"
)

const (
	maxFormMemory = 8 << 20
	maxImageSize  = 5 << 20
)

// productForm reads the multipart fields of a product; absent fields are nil.
type productForm struct {
	name        *string
	description *string
	category    *string
	price       *decimal.Decimal
	quantity    *int32
	image       *request.Image
}

func formValue(form *multipart.Form, key string) (string, bool) {
	values, ok := form.Value[key]
	if !ok || len(values) == 0 {
		return "", false
	}
	return strings.TrimSpace(values[0]), true
}

func readImage(form *multipart.Form) (*request.Image, error) {
	files := form.File["image"]
	if len(files) == 0 {
		return nil, nil
	}
	header := files[0]
	if header.Size > maxImageSize {
		return nil, fmt.Errorf("%w: image is larger than %d bytes", productErrors.ErrInvalidImage, maxImageSize)
	}
	file, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", productErrors.ErrInvalidImage, err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxImageSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", productErrors.ErrInvalidImage, err)
	}
	if len(data) == 0 {
		return nil, nil
	}
	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		return nil, fmt.Errorf("%w: content type %s", productErrors.ErrInvalidImage, contentType)
	}
	return &request.Image{Data: data, ContentType: contentType}, nil
}

func parseProductForm(r *http.Request) (productForm, error) {
	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			return productForm{}, fmt.Errorf("%w: expected multipart form", productErrors.ErrInvalidForm)
		}
		return productForm{}, fmt.Errorf("%w: %w", productErrors.ErrInvalidForm, err)
	}
	form := productForm{}
	if value, ok := formValue(r.MultipartForm, "name"); ok {
		form.name = &value
	}
	if value, ok := formValue(r.MultipartForm, "description"); ok {
		form.description = &value
	}
	if value, ok := formValue(r.MultipartForm, "category"); ok {
		form.category = &value
	}
	if value, ok := formValue(r.MultipartForm, "price"); ok && value != "" {
		price, err := decimal.NewFromString(value)
		if err != nil || price.IsNegative() {
			return productForm{}, fmt.Errorf("%w: price=%q", productErrors.ErrInvalidForm, value)
		}
		form.price = &price
	}
	if value, ok := formValue(r.MultipartForm, "quantity"); ok && value != "" {
		quantity, err := strconv.ParseInt(value, 10, 32)
		if err != nil {
			return productForm{}, fmt.Errorf("%w: quantity=%q", productErrors.ErrInvalidForm, value)
		}
		q := int32(quantity)
		form.quantity = &q
	}
	image, err := readImage(r.MultipartForm)
	if err != nil {
		return productForm{}, err
	}
	form.image = image
	return form, nil
}

func (f productForm) insert() request.InsertProduct {
	param := request.InsertProduct{Image: f.image}
	if f.name != nil {
		param.Name = *f.name
	}
	if f.description != nil {
		param.Description = *f.description
	}
	if f.category != nil {
		param.Category = *f.category
	}
	if f.price != nil {
		param.Price = *f.price
	}
	if f.quantity != nil {
		param.Quantity = *f.quantity
	}
	return param
}

func (f productForm) update() request.UpdateProduct {
	return request.UpdateProduct{
		Name:        f.name,
		Description: f.description,
		Category:    f.category,
		Price:       f.price,
		Quantity:    f.quantity,
		Image:       f.image,
	}
}
