package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

// helper to perform requests with auth token
func performRequest(r http.Handler, method, path string, body io.Reader, token string, contentType string) *httptest.ResponseRecorder {
	// allow callers to pass nil for body safely
	req, _ := http.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func setupTestServer(t *testing.T) *gin.Engine {
	// integration tests are opt-in. Set DB_DSN_TEST=1 and DB_DSN to run them.
	if os.Getenv("DB_DSN_TEST") != "1" {
		t.Skip("integration tests are disabled; set DB_DSN_TEST=1 to enable")
	}
	gin.SetMode(gin.TestMode)
	jwtSecret = []byte("test-secret")
	initDB()
	tmp := t.TempDir()
	_ = os.Setenv("UPLOAD_BASE", tmp)
	seedDB()
	r := gin.Default()
	setupRoutes(r)
	return r
}

func multipartBody(t *testing.T, field, filename string, content []byte) (*bytes.Buffer, string) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("form file: %v", err)
	}
	if _, err := fw.Write(content); err != nil {
		t.Fatalf("write part: %v", err)
	}
	_ = w.Close()
	return &buf, w.FormDataContentType()
}

func TestReconcileFlow(t *testing.T) {
	r := setupTestServer(t)

	// 1. Register and login
	regBody, _ := json.Marshal(map[string]string{"username": "recon1", "password": "pass1234"})
	resp := performRequest(r, http.MethodPost, "/register", bytes.NewBuffer(regBody), "", "application/json")
	if resp.Code != 200 && resp.Code != 409 {
		t.Fatalf("register failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	resp = performRequest(r, http.MethodPost, "/login", bytes.NewBuffer(regBody), "", "application/json")
	if resp.Code != 200 {
		t.Fatalf("login failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	var loginOut struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &loginOut); err != nil || loginOut.Token == "" {
		t.Fatalf("no token in login response: %s", resp.Body.String())
	}
	token := loginOut.Token

	// 2. Import a small ledger
	csv := "date,description,amount\n2025-07-22,BIRDSEYE SURVEILLANCE,-45.00\n2025-07-20,COFFEE SHOP,-5.25\n"
	body, ctype := multipartBody(t, "file", "ledger.csv", []byte(csv))
	resp = performRequest(r, http.MethodPost, "/transactions/import", body, token, ctype)
	if resp.Code != 200 {
		t.Fatalf("import failed status=%d body=%s", resp.Code, resp.Body.String())
	}

	// re-import must be a no-op
	body, ctype = multipartBody(t, "file", "ledger.csv", []byte(csv))
	resp = performRequest(r, http.MethodPost, "/transactions/import", body, token, ctype)
	if resp.Code != 200 {
		t.Fatalf("re-import failed status=%d", resp.Code)
	}
	var importOut struct {
		Imported int `json:"imported"`
	}
	_ = json.Unmarshal(resp.Body.Bytes(), &importOut)
	if importOut.Imported != 0 {
		t.Fatalf("re-import created rows: %+v", importOut)
	}

	// 3. Upload a text receipt and wait for extraction
	receipt := "Birdseye Surveillance LLC\nInvoice Date: 07/22/2025\nTotal: 45.00\n"
	body, ctype = multipartBody(t, "file", "invoice.txt", []byte(receipt))
	resp = performRequest(r, http.MethodPost, "/receipts", body, token, ctype)
	if resp.Code != 202 {
		t.Fatalf("upload failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	var upOut struct {
		ID uint `json:"id"`
	}
	_ = json.Unmarshal(resp.Body.Bytes(), &upOut)

	var recOut struct {
		Status          string   `json:"Status"`
		ExtractedAmount *float64 `json:"ExtractedAmount"`
	}
	deadline := time.Now().Add(5 * time.Second)
	for {
		resp = performRequest(r, http.MethodGet, fmt.Sprintf("/receipts/%d", upOut.ID), nil, token, "")
		if resp.Code != 200 {
			t.Fatalf("get receipt failed status=%d", resp.Code)
		}
		_ = json.Unmarshal(resp.Body.Bytes(), &recOut)
		if recOut.Status == "completed" || recOut.Status == "failed" {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("receipt never finished processing: %s", resp.Body.String())
		}
		time.Sleep(100 * time.Millisecond)
	}
	if recOut.Status != "completed" || recOut.ExtractedAmount == nil || *recOut.ExtractedAmount != 45.00 {
		t.Fatalf("unexpected extraction result: %s", resp.Body.String())
	}

	// 4. Candidates should rank the matching transaction first
	resp = performRequest(r, http.MethodGet, fmt.Sprintf("/receipts/%d/candidates", upOut.ID), nil, token, "")
	if resp.Code != 200 {
		t.Fatalf("candidates failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	var cands []struct {
		TransactionID uint `json:"transaction_id"`
		Confidence    int  `json:"confidence"`
	}
	_ = json.Unmarshal(resp.Body.Bytes(), &cands)
	if len(cands) == 0 || cands[0].Confidence < 70 {
		t.Fatalf("expected a strong top candidate: %s", resp.Body.String())
	}

	// 5. Auto-match the receipt, then confirm via the matches list
	resp = performRequest(r, http.MethodPost, fmt.Sprintf("/receipts/%d/automatch", upOut.ID), nil, token, "")
	if resp.Code != 200 {
		t.Fatalf("automatch failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	resp = performRequest(r, http.MethodGet, "/matches?status=auto_matched", nil, token, "")
	if resp.Code != 200 {
		t.Fatalf("list matches failed status=%d", resp.Code)
	}
	var matches []struct {
		ID            uint `json:"ID"`
		TransactionID uint `json:"TransactionID"`
	}
	_ = json.Unmarshal(resp.Body.Bytes(), &matches)
	if len(matches) == 0 {
		t.Fatalf("no auto-matched rows: %s", resp.Body.String())
	}

	// 6. Confirm the match
	resp = performRequest(r, http.MethodPost, fmt.Sprintf("/matches/%d/confirm", matches[0].ID), nil, token, "")
	if resp.Code != 200 {
		t.Fatalf("confirm failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	confirmedTx := matches[0].TransactionID

	// 7. A confirmed receipt is off-limits to further auto-matching
	resp = performRequest(r, http.MethodPost, fmt.Sprintf("/receipts/%d/automatch", upOut.ID), nil, token, "")
	if resp.Code != 200 {
		t.Fatalf("automatch after confirm failed status=%d", resp.Code)
	}
	var rerunOut struct {
		Matched bool `json:"matched"`
	}
	_ = json.Unmarshal(resp.Body.Bytes(), &rerunOut)
	if rerunOut.Matched {
		t.Fatalf("confirmed receipt gained a new match: %s", resp.Body.String())
	}

	// 8. A transaction holds at most one confirmed row: pairing it with a
	// second receipt must not confirm
	receipt2 := "Corner Coffee\nDate: 07/20/2025\nTotal: 5.25\n"
	body, ctype = multipartBody(t, "file", "coffee.txt", []byte(receipt2))
	resp = performRequest(r, http.MethodPost, "/receipts", body, token, ctype)
	if resp.Code != 202 {
		t.Fatalf("second upload failed status=%d", resp.Code)
	}
	var up2 struct {
		ID uint `json:"id"`
	}
	_ = json.Unmarshal(resp.Body.Bytes(), &up2)
	deadline = time.Now().Add(5 * time.Second)
	for {
		resp = performRequest(r, http.MethodGet, fmt.Sprintf("/receipts/%d", up2.ID), nil, token, "")
		_ = json.Unmarshal(resp.Body.Bytes(), &recOut)
		if recOut.Status == "completed" || recOut.Status == "failed" {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("second receipt never finished: %s", resp.Body.String())
		}
		time.Sleep(100 * time.Millisecond)
	}

	pairBody, _ := json.Marshal(map[string]uint{"receipt_id": up2.ID, "transaction_id": confirmedTx})
	resp = performRequest(r, http.MethodPost, "/matches", bytes.NewBuffer(pairBody), token, "application/json")
	if resp.Code != 200 {
		t.Fatalf("manual pair failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	resp = performRequest(r, http.MethodGet, "/matches?status=pending", nil, token, "")
	_ = json.Unmarshal(resp.Body.Bytes(), &matches)
	if len(matches) == 0 {
		t.Fatalf("pending manual match not listed: %s", resp.Body.String())
	}
	resp = performRequest(r, http.MethodPost, fmt.Sprintf("/matches/%d/confirm", matches[0].ID), nil, token, "")
	if resp.Code != 409 {
		t.Fatalf("expected 409 confirming a second match for the transaction, got %d: %s", resp.Code, resp.Body.String())
	}
}
