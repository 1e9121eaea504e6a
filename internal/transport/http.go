package transport

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ducnv-dev/shoestore-backend/internal/chatbot"
	"github.com/ducnv-dev/shoestore-backend/internal/customer"
	"github.com/ducnv-dev/shoestore-backend/internal/handler"
	"github.com/ducnv-dev/shoestore-backend/internal/order"
	"github.com/ducnv-dev/shoestore-backend/internal/product"
	"github.com/ducnv-dev/shoestore-backend/pkg/config"
)

// NewRouter wires repositories, services and handlers onto the v1 API surface.
func NewRouter(db *mongo.Database, cfg *config.Config) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	dev := cfg.IsDev()

	productRepo := product.NewMongoRepository(db)
	productSvc := product.NewService(productRepo)
	productHandler := handler.NewProductHandler(productSvc, dev)

	customerRepo := customer.NewMongoRepository(db)
	customerSvc := customer.NewService(customerRepo)
	customerHandler := handler.NewCustomerHandler(customerSvc, dev)

	orderRepo := order.NewMongoRepository(db)
	orderSvc := order.NewService(orderRepo, order.Options{
		PruneZeroQuantity: cfg.Order.PruneZeroQuantity,
	})
	orderHandler := handler.NewOrderHandler(orderSvc, dev)

	generator := chatbot.NewGeminiClient(cfg.Gemini.APIKey, cfg.Gemini.Model)
	chatbotSvc := chatbot.NewService(generator, productSvc)
	chatbotHandler := handler.NewChatbotHandler(chatbotSvc, dev)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"message":"APIs v1 are ready to use"}`))
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", productHandler.GetAll)
			r.Post("/", productHandler.Create)
			r.Get("/filter", productHandler.ListPage)
			r.Get("/allProductQuantity", productHandler.CountAll)
			r.Get("/topBestSeller", productHandler.TopBestSellers)
			r.Get("/sliderType", productHandler.ByBrandAndType)
			r.Get("/{id}", productHandler.GetDetails)
			r.Put("/{id}", productHandler.Update)
			r.Put("/{id}/delete", productHandler.Delete)
			r.Put("/{id}/quantitySold", productHandler.UpdateQuantitySold)
		})

		r.Route("/customers", func(r chi.Router) {
			r.Get("/", customerHandler.List)
			r.Post("/", customerHandler.Create)
			r.Post("/login", customerHandler.Login)
			r.Get("/{id}", customerHandler.GetDetails)
			r.Put("/{id}", customerHandler.Update)
			r.Put("/{id}/role", customerHandler.ChangeRole)
			r.Put("/{id}/orders", customerHandler.AddOrder)
			r.Put("/{id}/orders/status", customerHandler.UpdateOrder)
			r.Put("/{id}/delete", customerHandler.Delete)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", orderHandler.List)
			r.Post("/", orderHandler.Create)
			r.Get("/{id}", orderHandler.GetDetails)
			r.Put("/{id}", orderHandler.Checkout)
			r.Put("/{id}/add-product", orderHandler.AddProduct)
			r.Put("/{id}/remove-product", orderHandler.RemoveProduct)
			r.Put("/{id}/increase-quantity", orderHandler.IncreaseQuantity)
			r.Put("/{id}/decrease-quantity", orderHandler.DecreaseQuantity)
			r.Put("/{id}/information", orderHandler.AddInformation)
			r.Put("/{id}/status", orderHandler.UpdateStatus)
			r.Put("/{id}/delete", orderHandler.Delete)
		})

		r.Post("/chatbot", chatbotHandler.Chat)
	})

	return r
}
