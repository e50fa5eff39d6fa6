package handlers

import (
	"io"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/profactive/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func marketingRoutes(content *mockContentService, referrals *mockReferralService) func(r chi.Router) {
	return NewMarketingHandler(content, referrals, "https://profactive.kz/courses/", zap.NewNop()).RegisterRoutes
}

func TestMarketingHandler_FollowReferral(t *testing.T) {
	t.Run("known code is remembered", func(t *testing.T) {
		referrals := &mockReferralService{referral: &models.Referral{PromoCode: "AB12CD34"}}
		w := serve(marketingRoutes(&mockContentService{}, referrals), httptestGet("/referral/ab12cd34"))

		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "https://profactive.kz/courses/", w.Header().Get("Location"))
		code, ok := cookieValue(w, referralCookie)
		assert.True(t, ok)
		assert.Equal(t, "AB12CD34", code)
	})

	t.Run("unknown code still redirects", func(t *testing.T) {
		referrals := &mockReferralService{err: models.ErrNotFound}
		w := serve(marketingRoutes(&mockContentService{}, referrals), httptestGet("/referral/NOPE"))

		assert.Equal(t, http.StatusFound, w.Code)
		_, ok := cookieValue(w, referralCookie)
		assert.False(t, ok)
	})
}

func TestMarketingHandler_JoinReferral(t *testing.T) {
	referrals := &mockReferralService{referral: &models.Referral{PromoCode: "AB12CD34", ReferralLink: "https://profactive.kz/referral/AB12CD34/"}}
	w := serve(marketingRoutes(&mockContentService{}, referrals), formRequest(http.MethodPost, "/referrals",
		"first_name=A&last_name=B&email=a%40mail.kz&phone_number=1"))

	assert.Equal(t, http.StatusCreated, w.Code)
	body := decodeBodyMap(t, w)
	assert.Equal(t, "AB12CD34", body["promo_code"])

	referrals.err = models.ErrAlreadyExists
	w = serve(marketingRoutes(&mockContentService{}, referrals), jsonRequest(http.MethodPost, "/referrals", `{}`))
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestMarketingHandler_Blogs(t *testing.T) {
	content := &mockContentService{}
	w := serve(marketingRoutes(content, &mockReferralService{}), httptestGet("/blogs?page=2&count=3"))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, content.page)
	assert.Equal(t, 3, content.count)

	w = serve(marketingRoutes(content, &mockReferralService{}), httptestGet("/blogs?page=x"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMarketingHandler_DownloadDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contract.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4 contract"), 0o644))
	file, err := os.Open(path)
	require.NoError(t, err)

	content := &mockContentService{doc: &models.Document{ID: 1, File: "documents/contract.pdf"}, file: file}
	w := serve(marketingRoutes(content, &mockReferralService{}), httptestGet("/documents/1/download"))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), `filename="contract.pdf"`)
	data, err := io.ReadAll(w.Body)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 contract", string(data))

	missing := &mockContentService{err: models.ErrNotFound}
	w = serve(marketingRoutes(missing, &mockReferralService{}), httptestGet("/documents/2/download"))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
