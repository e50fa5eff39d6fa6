package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/profactive/backend/internal/models"
	"github.com/profactive/backend/libs/handlers"
	"go.uber.org/zap"
)

// referralCookieTTL keeps a followed referral code for a month
const referralCookieTTL = 30 * 24 * time.Hour

// ContentService is the interface that wraps methods for the informational pages
type ContentService interface {
	// FAQs returns active questions, all of them when category is empty
	FAQs(ctx context.Context, category string) ([]models.FAQ, error)
	// Blogs returns a page of active posts
	Blogs(ctx context.Context, page, count int) ([]models.Blog, error)
	// Documents returns active downloadable documents
	Documents(ctx context.Context) ([]models.Document, error)
	// OpenDocument opens the document file and counts the download. The caller closes the file.
	OpenDocument(ctx context.Context, id int) (*models.Document, *os.File, error)
}

// ReferralService is the interface that wraps methods for the referral program
type ReferralService interface {
	// Join registers a participant and emails the promo code
	Join(ctx context.Context, req *models.CreateReferralRequest) (*models.Referral, error)
	// ResolveCode returns the active participant owning the code
	ResolveCode(ctx context.Context, code string) (*models.Referral, error)
	// Discount returns the current discount percentage
	Discount(ctx context.Context) (float64, error)
}

// MarketingHandler handles FAQ, blog, document and referral HTTP requests
type MarketingHandler struct {
	handlers.BaseHandler
	contentService  ContentService
	referralService ReferralService
	catalogueURL    string
}

// NewMarketingHandler creates a new marketing handler.
// catalogueURL is where followed referral links land.
func NewMarketingHandler(contentService ContentService, referralService ReferralService, catalogueURL string, logger *zap.Logger) *MarketingHandler {
	return &MarketingHandler{
		BaseHandler:     handlers.BaseHandler{Logger: logger},
		contentService:  contentService,
		referralService: referralService,
		catalogueURL:    catalogueURL,
	}
}

// RegisterRoutes registers marketing routes
func (h *MarketingHandler) RegisterRoutes(r chi.Router) {
	r.Get("/faqs", h.FAQs)
	r.Get("/blogs", h.Blogs)
	r.Get("/documents", h.Documents)
	r.Get("/documents/{id}/download", h.DownloadDocument)
	r.Post("/referrals", h.JoinReferral)
	r.Get("/referrals/discount", h.Discount)
	r.Get("/referral/{code}", h.FollowReferral)
}

// FAQs handles GET /faqs
// @Summary List FAQs
// @Tags marketing
// @Produce json
// @Param category query string false "FAQ category"
// @Success 200 {array} models.FAQ
// @Router /faqs [get]
func (h *MarketingHandler) FAQs(w http.ResponseWriter, r *http.Request) {
	faqs, err := h.contentService.FAQs(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		respondServiceError(&h.BaseHandler, w, r, err, "failed to get faqs")
		return
	}
	h.RespondJSON(w, http.StatusOK, faqs)
}

// Blogs handles GET /blogs
// @Summary List blog posts
// @Tags marketing
// @Produce json
// @Param page query int false "Page number, default 1"
// @Param count query int false "Page size, default 9"
// @Success 200 {array} models.Blog
// @Router /blogs [get]
func (h *MarketingHandler) Blogs(w http.ResponseWriter, r *http.Request) {
	page, err := queryInt(r, "page")
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	count, err := queryInt(r, "count")
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	blogs, err := h.contentService.Blogs(r.Context(), page, count)
	if err != nil {
		respondServiceError(&h.BaseHandler, w, r, err, "failed to get blogs")
		return
	}
	h.RespondJSON(w, http.StatusOK, blogs)
}

// Documents handles GET /documents
// @Summary List documents
// @Tags marketing
// @Produce json
// @Success 200 {array} models.Document
// @Router /documents [get]
func (h *MarketingHandler) Documents(w http.ResponseWriter, r *http.Request) {
	documents, err := h.contentService.Documents(r.Context())
	if err != nil {
		respondServiceError(&h.BaseHandler, w, r, err, "failed to get documents")
		return
	}
	h.RespondJSON(w, http.StatusOK, documents)
}

// DownloadDocument handles GET /documents/{id}/download
// @Summary Download a document
// @Tags marketing
// @Produce octet-stream
// @Param id path int true "Document ID"
// @Success 200 {file} file
// @Failure 404 {object} map[string]any
// @Router /documents/{id}/download [get]
func (h *MarketingHandler) DownloadDocument(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	doc, file, err := h.contentService.OpenDocument(r.Context(), id)
	if err != nil {
		respondServiceError(&h.BaseHandler, w, r, err, "failed to open document")
		return
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		h.Logger.Error("failed to stat document file", zap.Int("documentID", doc.ID), zap.Error(err))
		h.RespondError(w, http.StatusInternalServerError, "failed to open document")
		return
	}

	name := filepath.Base(doc.File)
	w.Header().Set("Content-Disposition", "attachment; filename=\""+name+"\"")
	http.ServeContent(w, r, name, info.ModTime(), file)
}

// JoinReferral handles POST /referrals
// @Summary Join the referral program
// @Tags marketing
// @Accept json
// @Produce json
// @Param request body models.CreateReferralRequest true "Participant"
// @Success 201 {object} map[string]any
// @Failure 400 {object} map[string]any
// @Failure 409 {object} map[string]any
// @Router /referrals [post]
func (h *MarketingHandler) JoinReferral(w http.ResponseWriter, r *http.Request) {
	var req models.CreateReferralRequest
	err := decodeBody(r, &req, func(form url.Values) {
		req = models.CreateReferralRequest{
			FirstName: form.Get("first_name"),
			LastName:  form.Get("last_name"),
			Email:     form.Get("email"),
			Phone:     form.Get("phone_number"),
		}
	})
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	ref, err := h.referralService.Join(r.Context(), &req)
	if err != nil {
		respondServiceError(&h.BaseHandler, w, r, err, "failed to join referral program")
		return
	}

	h.RespondSuccess(w, http.StatusCreated, "promo code sent to your email", map[string]any{
		"promo_code":    ref.PromoCode,
		"referral_link": ref.ReferralLink,
	})
}

// Discount handles GET /referrals/discount
// @Summary Current referral discount
// @Tags marketing
// @Produce json
// @Success 200 {object} map[string]any
// @Router /referrals/discount [get]
func (h *MarketingHandler) Discount(w http.ResponseWriter, r *http.Request) {
	discount, err := h.referralService.Discount(r.Context())
	if err != nil {
		respondServiceError(&h.BaseHandler, w, r, err, "failed to get discount")
		return
	}
	h.RespondJSON(w, http.StatusOK, map[string]any{"discount": discount})
}

// FollowReferral handles GET /referral/{code}
// @Summary Follow a referral link
// @Description Remembers the promo code in the referral_code cookie and redirects to the catalogue
// @Tags marketing
// @Param code path string true "Promo code"
// @Success 302
// @Router /referral/{code} [get]
func (h *MarketingHandler) FollowReferral(w http.ResponseWriter, r *http.Request) {
	ref, err := h.referralService.ResolveCode(r.Context(), chi.URLParam(r, "code"))
	switch {
	case err == nil:
		http.SetCookie(w, &http.Cookie{
			Name:     referralCookie,
			Value:    ref.PromoCode,
			Path:     "/",
			MaxAge:   int(referralCookieTTL.Seconds()),
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	case errors.Is(err, models.ErrNotFound), errors.Is(err, models.ErrValidation):
		h.Logger.Debug("unknown referral code followed", zap.String("code", chi.URLParam(r, "code")))
	default:
		h.Logger.Error("failed to resolve referral code", zap.Error(err))
	}

	http.Redirect(w, r, h.catalogueURL, http.StatusFound)
}
