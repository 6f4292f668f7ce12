// Package web serves the storefront pages. It consumes the catalog client
// and cart store strictly through their public operations.
package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	cartapp "github.com/moksh1tha/nuastore/internal/cart/app"
	cartdomain "github.com/moksh1tha/nuastore/internal/cart/domain"
	catalogapp "github.com/moksh1tha/nuastore/internal/catalog/app"
	catalogdomain "github.com/moksh1tha/nuastore/internal/catalog/domain"
	checkoutapp "github.com/moksh1tha/nuastore/internal/checkout/app"
	checkoutdomain "github.com/moksh1tha/nuastore/internal/checkout/domain"
)

type Handler struct {
	catalog  *catalogapp.Client
	cart     *cartapp.Store
	checkout *checkoutapp.Service
	log      *slog.Logger
}

func NewHandler(catalog *catalogapp.Client, cart *cartapp.Store, checkout *checkoutapp.Service, log *slog.Logger) *Handler {
	return &Handler{
		catalog:  catalog,
		cart:     cart,
		checkout: checkout,
		log:      log,
	}
}

func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.handleListing)
	mux.HandleFunc("GET /product/{id}", h.handleProductDetail)
	mux.HandleFunc("GET /cart", h.handleCart)
	mux.HandleFunc("POST /cart/add", h.handleCartAdd)
	mux.HandleFunc("POST /cart/update", h.handleCartUpdate)
	mux.HandleFunc("POST /cart/remove", h.handleCartRemove)
	mux.HandleFunc("GET /checkout", h.handleCheckoutForm)
	mux.HandleFunc("POST /checkout", h.handleCheckoutSubmit)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
}

type listingData struct {
	CartCount  int
	Products   []catalogdomain.Product
	Categories []string
	Query      string
	Category   string
	TotalCount int
}

func (h *Handler) handleListing(w http.ResponseWriter, r *http.Request) {
	var (
		products   []catalogdomain.Product
		categories []string
	)

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		products, err = h.catalog.Products(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		categories, err = h.catalog.Categories(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		h.renderFetchError(w, r, err)
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	category := r.URL.Query().Get("category")

	filtered := make([]catalogdomain.Product, 0, len(products))
	for _, p := range products {
		if query != "" && !strings.Contains(strings.ToLower(p.Title), strings.ToLower(query)) {
			continue
		}
		if category != "" && category != "all" && p.Category != category {
			continue
		}
		filtered = append(filtered, p)
	}

	h.render(w, http.StatusOK, "listing", listingData{
		CartCount:  h.cart.ItemCount(),
		Products:   filtered,
		Categories: categories,
		Query:      query,
		Category:   category,
		TotalCount: len(products),
	})
}

type detailData struct {
	CartCount  int
	Product    catalogdomain.Product
	Quantities []int
}

func (h *Handler) handleProductDetail(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	product, err := h.catalog.Product(r.Context(), id)
	if err != nil {
		h.renderFetchError(w, r, err)
		return
	}

	quantities := make([]int, 0, cartdomain.MaxQuantity)
	for i := 1; i <= cartdomain.MaxQuantity; i++ {
		quantities = append(quantities, i)
	}

	h.render(w, http.StatusOK, "detail", detailData{
		CartCount:  h.cart.ItemCount(),
		Product:    product,
		Quantities: quantities,
	})
}

type cartData struct {
	CartCount int
	Lines     []cartdomain.Line
	Quote     checkoutdomain.Quote
}

func (h *Handler) handleCart(w http.ResponseWriter, r *http.Request) {
	lines := h.cart.Lines()
	h.render(w, http.StatusOK, "cart", cartData{
		CartCount: h.cart.ItemCount(),
		Lines:     lines,
		Quote:     h.checkout.Quote(lines),
	})
}

func (h *Handler) handleCartAdd(w http.ResponseWriter, r *http.Request) {
	id, qty, ok := cartForm(r)
	if !ok {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	// The product snapshot comes through the catalog client, so adding a
	// product the visitor just looked at never refetches it.
	product, err := h.catalog.Product(r.Context(), id)
	if err != nil {
		h.renderFetchError(w, r, err)
		return
	}

	h.cart.Add(product, qty)
	http.Redirect(w, r, "/cart", http.StatusSeeOther)
}

func (h *Handler) handleCartUpdate(w http.ResponseWriter, r *http.Request) {
	id, qty, ok := cartForm(r)
	if !ok {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	h.cart.SetQuantity(id, qty)
	http.Redirect(w, r, "/cart", http.StatusSeeOther)
}

func (h *Handler) handleCartRemove(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.FormValue("product_id"))
	if err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	h.cart.Remove(id)
	http.Redirect(w, r, "/cart", http.StatusSeeOther)
}

// cartForm reads product_id and quantity from a mutation form. Quantity
// bounds are the cart store's concern, not parsed here.
func cartForm(r *http.Request) (id, qty int, ok bool) {
	id, err := strconv.Atoi(r.FormValue("product_id"))
	if err != nil {
		return 0, 0, false
	}
	qty, err = strconv.Atoi(r.FormValue("quantity"))
	if err != nil {
		return 0, 0, false
	}
	return id, qty, true
}

type checkoutData struct {
	CartCount int
	Lines     []cartdomain.Line
	Quote     checkoutdomain.Quote
	Form      checkoutdomain.Form
	Errors    checkoutapp.ValidationErrors
}

func (h *Handler) handleCheckoutForm(w http.ResponseWriter, r *http.Request) {
	lines := h.cart.Lines()
	if len(lines) == 0 {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	h.render(w, http.StatusOK, "checkout", checkoutData{
		CartCount: h.cart.ItemCount(),
		Lines:     lines,
		Quote:     h.checkout.Quote(lines),
	})
}

type confirmationData struct {
	CartCount int
	Order     checkoutdomain.Order
}

func (h *Handler) handleCheckoutSubmit(w http.ResponseWriter, r *http.Request) {
	form := checkoutdomain.Form{
		Name:    strings.TrimSpace(r.FormValue("name")),
		Email:   strings.TrimSpace(r.FormValue("email")),
		Address: strings.TrimSpace(r.FormValue("address")),
	}

	lines := h.cart.Lines()
	order, err := h.checkout.PlaceOrder(r.Context(), form, lines)
	if err != nil {
		var verrs checkoutapp.ValidationErrors
		switch {
		case errors.As(err, &verrs):
			h.render(w, http.StatusUnprocessableEntity, "checkout", checkoutData{
				CartCount: h.cart.ItemCount(),
				Lines:     lines,
				Quote:     h.checkout.Quote(lines),
				Form:      form,
				Errors:    verrs,
			})
		case errors.Is(err, checkoutapp.ErrEmptyCart):
			http.Redirect(w, r, "/", http.StatusSeeOther)
		default:
			h.log.Error("place order failed", slog.Any("err", err))
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
		return
	}

	h.cart.Clear()
	h.log.Info("order placed",
		slog.String("order_id", order.ID),
		slog.Int("items", len(order.Lines)),
		slog.Float64("total", order.Total),
	)

	h.render(w, http.StatusOK, "confirmation", confirmationData{
		CartCount: 0,
		Order:     order,
	})
}

type errorData struct {
	CartCount int
	Message   string
	RetryURL  string
}

// renderFetchError shows the retry-capable catalog error page. Retry is
// just re-requesting the same URL.
func (h *Handler) renderFetchError(w http.ResponseWriter, r *http.Request, err error) {
	var fe *catalogapp.FetchError
	message := "Something went wrong. Please try again."
	if errors.As(err, &fe) {
		message = "Failed to load " + strings.TrimPrefix(fe.Resource, "/") + ". Please try again."
	}
	if errors.Is(err, context.Canceled) {
		// Visitor navigated away; nothing to render.
		return
	}

	h.log.Warn("catalog read failed", slog.String("url", r.URL.String()), slog.Any("err", err))
	h.render(w, http.StatusBadGateway, "error", errorData{
		CartCount: h.cart.ItemCount(),
		Message:   message,
		RetryURL:  r.URL.String(),
	})
}
