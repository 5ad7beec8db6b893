package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/Rvd99/ali-baba/controllers"
	"github.com/Rvd99/ali-baba/middleware"
	"github.com/Rvd99/ali-baba/models"
)

// Controllers bundles every handler the router mounts.
type Controllers struct {
	Auth     *controllers.AuthController
	User     *controllers.UserController
	Product  *controllers.ProductController
	Category *controllers.CategoryController
	Cart     *controllers.CartController
	Order    *controllers.OrderController
	Checkout *controllers.CheckoutController
	Review   *controllers.ReviewController
	Wishlist *controllers.WishlistController
}

// Register mounts the whole API surface. The Stripe webhook lives outside both
// the auth groups and the shared rate limiter: its only credential is the
// signature header, and gateway retries arrive in bursts from a handful of
// egress IPs that must not be throttled into 429s.
func Register(r *gin.Engine, c *Controllers, jwtSecret []byte) {
	auth := middleware.Auth(jwtSecret)
	optionalAuth := middleware.OptionalAuth(jwtSecret)
	sellerOrAdmin := middleware.RequireRole(models.RoleSeller, models.RoleAdmin)
	adminOnly := middleware.RequireRole(models.RoleAdmin)

	r.POST("/webhooks/stripe", c.Checkout.HandleWebhook)

	api := r.Group("", middleware.DefaultRateLimit())

	authRoutes := api.Group("/auth", middleware.AuthRateLimit())
	{
		authRoutes.POST("/register", c.Auth.Register)
		authRoutes.POST("/login", c.Auth.Login)
	}

	userRoutes := api.Group("/users")
	{
		userRoutes.GET("/me", auth, c.User.Me)
		userRoutes.PUT("/me", auth, c.User.UpdateMe)
		userRoutes.PUT("/me/password", auth, c.Auth.ChangePassword)
		userRoutes.GET("/:id", c.User.GetPublicProfile)
	}

	productRoutes := api.Group("/products")
	{
		// Optional auth so sellers can list their own drafts with ?mine=true.
		productRoutes.GET("", optionalAuth, c.Product.ListProducts)
		productRoutes.GET("/:id", c.Product.GetProduct)
		productRoutes.GET("/:id/reviews", c.Review.ListProductReviews)

		productRoutes.POST("", auth, sellerOrAdmin, c.Product.CreateProduct)
		productRoutes.PUT("/:id", auth, sellerOrAdmin, c.Product.UpdateProduct)
		productRoutes.DELETE("/:id", auth, sellerOrAdmin, c.Product.DeleteProduct)
		productRoutes.POST("/:id/images/presign", auth, sellerOrAdmin, c.Product.PresignImageUpload)

		productRoutes.POST("/:id/reviews", auth, c.Review.UpsertReview)
	}

	api.DELETE("/reviews/:reviewId", auth, c.Review.DeleteReview)

	categoryRoutes := api.Group("/categories")
	{
		categoryRoutes.GET("", c.Category.ListCategories)
		categoryRoutes.GET("/:id", c.Category.GetCategory)
		categoryRoutes.POST("", auth, adminOnly, c.Category.CreateCategory)
		categoryRoutes.PUT("/:id", auth, adminOnly, c.Category.UpdateCategory)
		categoryRoutes.DELETE("/:id", auth, adminOnly, c.Category.DeleteCategory)
	}

	cartRoutes := api.Group("/cart", auth)
	{
		cartRoutes.GET("", c.Cart.GetCart)
		cartRoutes.POST("/items", c.Cart.AddItem)
		cartRoutes.PUT("/items/:productId", c.Cart.UpdateItem)
		cartRoutes.DELETE("/items/:productId", c.Cart.RemoveItem)
		cartRoutes.DELETE("", c.Cart.ClearCart)
	}

	wishlistRoutes := api.Group("/wishlist", auth)
	{
		wishlistRoutes.GET("", c.Wishlist.GetWishlist)
		wishlistRoutes.POST("/items", c.Wishlist.AddItem)
		wishlistRoutes.DELETE("/items/:productId", c.Wishlist.RemoveItem)
	}

	orderRoutes := api.Group("/orders", auth)
	{
		orderRoutes.POST("", c.Order.CreateOrder)
		orderRoutes.GET("", c.Order.GetOrders)
		orderRoutes.GET("/:id", c.Order.GetOrderByID)
		orderRoutes.PUT("/:id/status", c.Order.UpdateOrderStatus)
	}

	api.POST("/checkout", auth, c.Checkout.CreateCheckoutSession)
}
