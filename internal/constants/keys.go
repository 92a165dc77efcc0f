package constants

const (
	KEY_APP_NAME         = "app"
	KEY_TAG              = "tag"
	KEY_PROCESS          = "process"
	KEY_CONFIG           = "config"
	KEY_REQUEST          = "request"
	KEY_REQUEST_ID       = "requestId"
	KEY_REQUEST_HOST     = "host"
	KEY_REQUEST_IP       = "requesterIP"
	KEY_REQUEST_METHOD   = "requestMethod"
	KEY_REQUEST_URI      = "requestURI"
	KEY_REQUEST_URL      = "requestURL"
	KEY_HEADER           = "header"
	KEY_BODY             = "body"
	KEY_TRACE_ID         = "traceId"
	KEY_SPAN_ID          = "spanId"
	KEY_TOKEN            = "token"
	KEY_EMAIL            = "email"
	KEY_USER_ID          = "userId"
	KEY_SHOP_ID          = "shopId"
	KEY_SHOP             = "shop"
	KEY_SHOPS            = "shops"
	KEY_PRODUCT          = "product"
	KEY_PRODUCTS         = "products"
	KEY_PRODUCT_ID       = "productId"
	KEY_PRODUCT_QTY      = "productQuantity"
	KEY_ORDER            = "order"
	KEY_ORDERS           = "orders"
	KEY_ORDER_ID         = "orderId"
	KEY_ORDER_LINE_ID    = "orderLineId"
	KEY_ORDER_LINES      = "orderLines"
	KEY_ORDER_STATUS     = "orderStatus"
	KEY_ORDER_EVENT      = "orderEvent"
	KEY_CHARGE           = "charge"
	KEY_CACHE_KEY        = "cacheKey"
	KEY_CART             = "cart"
	KEY_CART_INDEX       = "cartIndex"
	KEY_CART_LINES       = "cartLines"
	KEY_CART_QUANTITY    = "cartQuantity"
	KEY_STORAGE_KEY      = "storageKey"
	KEY_ADJUST_DIRECTION = "adjustDirection"
	KEY_DB_URL           = "dbUrl"
	KEY_CHANNEL          = "channel"
)
