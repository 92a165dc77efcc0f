package request

type InsertShop struct {
	Name        string `validate:"required,max=255" json:"name"`
	Description string `validate:"max=2000"         json:"description"`
}
