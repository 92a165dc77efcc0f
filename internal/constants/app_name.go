package constants

const (
	APP_STOREFRONT           = "storefront"
	APP_API_SERVICE          = "storefront-api"
	APP_USER_SERVICE         = "user-service"
	APP_SHOP_SERVICE         = "shop-service"
	APP_PRODUCT_SERVICE      = "product-service"
	APP_ORDER_SERVICE        = "order-service"
	APP_INVENTORY_ADJUSTER   = "inventory-adjuster"
	APP_NOTIFICATION_SERVICE = "notification-service"
	APP_CART_CLIENT          = "cart-client"
	AUDIENCE_USER            = "audience-user"
)

const (
	CHANNEL_ORDER_EVENTS = "order-events"
)
