package main

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"receipt-recon-backend/models"
	"receipt-recon-backend/pkg/extract"
	"receipt-recon-backend/pkg/match"
	"receipt-recon-backend/process/ingest"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm/clause"
)

// candidateListLimit truncates the ranked candidate list for the API; this is
// a presentation choice, the engine itself ranks the whole pool.
const candidateListLimit = 10

func setupRoutes(r *gin.Engine) {
	r.POST("/register", registerHandler)
	r.POST("/login", loginHandler)
	r.POST("/refresh", refreshHandler)
	r.POST("/revoke_refresh", revokeRefreshHandler)
	authGroup := r.Group("")
	authGroup.Use(jwtAuthMiddleware())
	authGroup.GET("/me", meHandler)
	authGroup.POST("/receipts", uploadReceiptHandler)
	authGroup.GET("/receipts", listReceiptsHandler)
	authGroup.GET("/receipts/:id", getReceiptHandler)
	authGroup.PATCH("/receipts/:id/fields", overrideReceiptFieldsHandler)
	authGroup.GET("/receipts/:id/candidates", matchCandidatesHandler)
	authGroup.POST("/receipts/:id/automatch", autoMatchReceiptHandler)
	authGroup.POST("/transactions/import", importTransactionsHandler)
	authGroup.GET("/transactions", listTransactionsHandler)
	authGroup.GET("/matches", listMatchesHandler)
	authGroup.POST("/matches", createMatchHandler)
	authGroup.POST("/automatch", autoMatchAllHandler)
	authGroup.POST("/matches/:id/confirm", confirmMatchHandler)
	authGroup.POST("/matches/:id/reject", rejectMatchHandler)
	authGroup.DELETE("/matches/:id", deleteMatchHandler)
}

func jwtAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || len(authHeader) < 8 || authHeader[:7] != "Bearer " {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid Authorization header"})
			c.Abort()
			return
		}
		tokenString := authHeader[7:]
		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrInvalidKeyType
			}
			return jwtSecret, nil
		})
		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}
		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid claims"})
			c.Abort()
			return
		}
		username, _ := claims["username"].(string)
		role, _ := claims["role"].(string)
		c.Set("username", username)
		if role != "" {
			c.Set("role", role)
		}
		c.Next()
	}
}

func meHandler(c *gin.Context) {
	usernameVal, _ := c.Get("username")
	if usernameVal == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "context missing username"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"username": usernameVal.(string)})
}

// getUserFromContext fetches the currently authenticated user using the username set by jwtAuthMiddleware
func getUserFromContext(c *gin.Context) (*models.User, bool) {
	unameVal, _ := c.Get("username")
	if unameVal == nil {
		return nil, false
	}
	var user models.User
	if err := db.Where("username = ?", unameVal.(string)).First(&user).Error; err != nil {
		return nil, false
	}
	return &user, true
}

func registerHandler(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := Register(req.Username, req.Password); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "user registered successfully"})
}

func loginHandler(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := Login(req.Username, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	roleName := ""
	if user.RoleID != nil {
		var r models.Role
		if err := db.First(&r, *user.RoleID).Error; err == nil {
			roleName = r.Name
		}
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"username": user.Username,
		"role":     roleName,
		"exp":      time.Now().Add(time.Hour * 24).Unix(),
	})
	tokenString, err := token.SignedString(jwtSecret)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}
	refreshToken, err := createAndStoreRefreshToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create refresh token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "login successful", "token": tokenString, "refresh_token": refreshToken})
}

// createAndStoreRefreshToken generates a random refresh token, stores its hash with expiry and returns the raw token string
func createAndStoreRefreshToken(userID uint) (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	token := hex.EncodeToString(b)
	h := sha256.Sum256([]byte(token))
	rt := models.RefreshToken{UserID: userID, TokenHash: hex.EncodeToString(h[:]), ExpiresAt: time.Now().Add(30 * 24 * time.Hour)}
	if err := db.Create(&rt).Error; err != nil {
		return "", err
	}
	return token, nil
}

func findRefreshTokenByRaw(token string) (*models.RefreshToken, error) {
	h := sha256.Sum256([]byte(token))
	var rt models.RefreshToken
	if err := db.Where("token_hash = ?", hex.EncodeToString(h[:])).First(&rt).Error; err != nil {
		return nil, err
	}
	return &rt, nil
}

// refreshHandler exchanges a refresh token for a new access token and rotates the refresh token
func refreshHandler(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rt, err := findRefreshTokenByRaw(req.RefreshToken)
	if err != nil || rt.Revoked || time.Now().After(rt.ExpiresAt) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired refresh token"})
		return
	}
	var user models.User
	if err := db.First(&user, rt.UserID).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	roleName := ""
	if user.RoleID != nil {
		var r models.Role
		if err := db.First(&r, *user.RoleID).Error; err == nil {
			roleName = r.Name
		}
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"username": user.Username,
		"role":     roleName,
		"exp":      time.Now().Add(15 * time.Minute).Unix(),
	})
	tokenString, err := token.SignedString(jwtSecret)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}
	db.Model(&models.RefreshToken{}).Where("id = ?", rt.ID).Update("revoked", true)
	newRT, err := createAndStoreRefreshToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to rotate refresh token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": tokenString, "refresh_token": newRT})
}

// revokeRefreshHandler revokes a given refresh token (useful on logout)
func revokeRefreshHandler(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rt, err := findRefreshTokenByRaw(req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "refresh token not found"})
		return
	}
	rt.Revoked = true
	if err := db.Save(rt).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to revoke token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "refresh token revoked"})
}

// uploadReceiptHandler accepts a multipart receipt file, stores it under the
// upload base dir, creates the Receipt row in processing state and runs the
// extraction attempt in the background.
func uploadReceiptHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file missing"})
		return
	}
	if file.Size > 10*1024*1024 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file too large (max 10MB)"})
		return
	}
	baseDir := uploadBaseDir()
	// strip any path component a client smuggles into the filename
	fileName := filepath.Base(file.Filename)
	relPath := filepath.Join("receipts", strconv.FormatUint(uint64(user.ID), 10), fileName)
	fullPath := filepath.Join(baseDir, relPath)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "mkdir failed"})
		return
	}
	if err := c.SaveUploadedFile(file, fullPath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "store failed"})
		return
	}

	rec := models.Receipt{
		UserID:      user.ID,
		FileName:    fileName,
		StorePath:   relPath,
		ContentType: file.Header.Get("Content-Type"),
		Status:      models.ReceiptStatusProcessing,
	}
	if err := db.Create(&rec).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}

	go func() {
		if err := ingest.ProcessReceipt(db, &rec, fullPath); err != nil {
			log.Printf("receipt %d extraction failed: %v", rec.ID, err)
		}
	}()
	c.JSON(http.StatusAccepted, gin.H{"id": rec.ID, "status": rec.Status})
}

func listReceiptsHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	var items []models.Receipt
	q := db.Where("user_id = ?", user.ID)
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}
	if err := q.Order("id desc").Limit(200).Find(&items).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, items)
}

func getReceiptHandler(c *gin.Context) {
	_, rec, ok := receiptFromPath(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, rec)
}

// receiptFromPath loads the :id receipt and enforces ownership. It writes the
// error response itself so handlers can just bail on !ok.
func receiptFromPath(c *gin.Context) (*models.User, *models.Receipt, bool) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return nil, nil, false
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return nil, nil, false
	}
	var rec models.Receipt
	if err := db.Where("id = ? AND user_id = ?", id, user.ID).First(&rec).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "receipt not found"})
		return nil, nil, false
	}
	return user, &rec, true
}

// overrideReceiptFieldsHandler lets a reviewer correct the extracted fields.
// Processing status stays as-is: an override is not a re-extraction.
func overrideReceiptFieldsHandler(c *gin.Context) {
	_, rec, ok := receiptFromPath(c)
	if !ok {
		return
	}
	var req struct {
		Amount   *float64 `json:"amount"`
		Date     *string  `json:"date"`
		Merchant *string  `json:"merchant"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Amount != nil {
		rec.ExtractedAmount = req.Amount
		rec.AmountSource = "manual-override"
	}
	if req.Date != nil {
		if _, ok := extract.ParseNormalized(*req.Date); !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be MM/DD/YYYY"})
			return
		}
		rec.ExtractedDate = req.Date
		rec.DateSource = "manual-override"
	}
	if req.Merchant != nil {
		rec.ExtractedMerchant = req.Merchant
		rec.MerchantSource = "manual-override"
	}
	if err := db.Save(rec).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, rec)
}

// importTransactionsHandler ingests a CSV ledger export. Expected header:
// date,description,amount[,category,reference,tax]. Duplicate rows (same
// date+description+amount) are ignored so re-importing a file is safe.
func importTransactionsHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file missing"})
		return
	}
	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "open failed"})
		return
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	imported, skipped := 0, 0
	first := true
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "malformed csv: " + err.Error()})
			return
		}
		if first {
			first = false
			if looksLikeHeader(row) {
				continue
			}
		}
		tx, ok := parseLedgerRow(user.ID, row)
		if !ok {
			skipped++
			continue
		}
		res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&tx)
		if res.Error != nil {
			skipped++
			continue
		}
		if res.RowsAffected == 0 {
			skipped++ // duplicate of an already-imported row
			continue
		}
		imported++
	}
	c.JSON(http.StatusOK, gin.H{"imported": imported, "skipped": skipped})
}

func looksLikeHeader(row []string) bool {
	if len(row) == 0 {
		return false
	}
	h := strings.ToLower(strings.TrimSpace(row[0]))
	return h == "date" || h == "transaction date" || h == "posted"
}

var ledgerDateFormats = []string{"2006-01-02", "01/02/2006", "1/2/2006", "01/02/06"}

func parseLedgerRow(userID uint, row []string) (models.Transaction, bool) {
	if len(row) < 3 {
		return models.Transaction{}, false
	}
	var date time.Time
	ok := false
	for _, layout := range ledgerDateFormats {
		if t, err := time.Parse(layout, strings.TrimSpace(row[0])); err == nil {
			date = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			ok = true
			break
		}
	}
	if !ok {
		return models.Transaction{}, false
	}
	amount, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(row[2]), ",", ""), 64)
	if err != nil {
		return models.Transaction{}, false
	}
	tx := models.Transaction{
		UserID:      userID,
		Date:        date,
		Description: strings.TrimSpace(row[1]),
		Amount:      amount,
	}
	if len(row) > 3 {
		tx.Category = strings.TrimSpace(row[3])
	}
	if len(row) > 4 {
		tx.ExternalRef = strings.TrimSpace(row[4])
	}
	if len(row) > 5 {
		if tax, err := strconv.ParseFloat(strings.TrimSpace(row[5]), 64); err == nil {
			tx.TaxAmount = &tax
		}
	}
	return tx, true
}

func listTransactionsHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	var items []models.Transaction
	q := db.Where("user_id = ?", user.ID)
	if search := c.Query("search"); search != "" {
		q = q.Where("description ILIKE ?", "%"+search+"%")
	}
	if err := q.Order("date desc, id desc").Limit(200).Find(&items).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, items)
}

type candidateDTO struct {
	TransactionID uint     `json:"transaction_id"`
	Description   string   `json:"description"`
	Date          string   `json:"date"`
	Amount        float64  `json:"amount"`
	Confidence    int      `json:"confidence"`
	Reasons       []string `json:"reasons"`
	AmountDiff    float64  `json:"amount_diff"`
}

// matchCandidatesHandler scores one receipt against the recent unmatched pool
// and returns the top candidates. Confidence is clamped here, at the
// presentation boundary; the engine's raw score can exceed 100.
func matchCandidatesHandler(c *gin.Context) {
	user, rec, ok := receiptFromPath(c)
	if !ok {
		return
	}
	store := match.NewGormStore(db)
	txs, err := store.UnmatchedTransactions(user.ID, 100)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	candidates := match.ScoreReceipt(*rec, txs)
	if len(candidates) > candidateListLimit {
		candidates = candidates[:candidateListLimit]
	}
	out := make([]candidateDTO, 0, len(candidates))
	for _, cand := range candidates {
		out = append(out, candidateDTO{
			TransactionID: cand.Transaction.ID,
			Description:   cand.Transaction.Description,
			Date:          cand.Transaction.Date.Format("01/02/2006"),
			Amount:        cand.Transaction.Amount,
			Confidence:    match.ClampConfidence(cand.Confidence),
			Reasons:       cand.Reasons,
			AmountDiff:    cand.AmountDiff,
		})
	}
	c.JSON(http.StatusOK, out)
}

// autoMatchReceiptHandler runs the policy for one receipt. A "threshold"
// query param overrides the default for this run.
func autoMatchReceiptHandler(c *gin.Context) {
	_, rec, ok := receiptFromPath(c)
	if !ok {
		return
	}
	am := match.NewAutoMatcher(match.NewGormStore(db), requestThreshold(c))
	matched, err := am.MatchReceipt(*rec)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "auto-match failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"matched": matched})
}

// autoMatchAllHandler runs the bulk policy over every unmatched receipt.
func autoMatchAllHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	am := match.NewAutoMatcher(match.NewGormStore(db), requestThreshold(c))
	matched, err := am.MatchAll(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "auto-match failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"matched": matched})
}

// requestThreshold resolves the auto-match confidence threshold: query param,
// then AUTO_MATCH_THRESHOLD env, then the engine default.
func requestThreshold(c *gin.Context) int {
	if v := c.Query("threshold"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	if v := os.Getenv("AUTO_MATCH_THRESHOLD"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return match.DefaultAutoMatchThreshold
}

func listMatchesHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	var items []models.Match
	q := db.Select("matches.*").
		Joins("JOIN receipts ON receipts.id = matches.receipt_id").
		Where("receipts.user_id = ?", user.ID)
	if status := c.Query("status"); status != "" {
		q = q.Where("matches.status = ?", status)
	}
	if err := q.Order("matches.id desc").Limit(200).Find(&items).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, items)
}

// createMatchHandler records a manual pairing. The pair is scored so the row
// carries a confidence, and the upsert replaces any earlier row for the same
// pair.
func createMatchHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	var req struct {
		ReceiptID     uint `json:"receipt_id" binding:"required"`
		TransactionID uint `json:"transaction_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var rec models.Receipt
	if err := db.Where("id = ? AND user_id = ?", req.ReceiptID, user.ID).First(&rec).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "receipt not found"})
		return
	}
	var tx models.Transaction
	if err := db.Where("id = ? AND user_id = ?", req.TransactionID, user.ID).First(&tx).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "transaction not found"})
		return
	}
	confidence := 0
	if cands := match.ScoreReceipt(rec, []models.Transaction{tx}); len(cands) > 0 {
		confidence = match.ClampConfidence(cands[0].Confidence)
	}
	store := match.NewGormStore(db)
	if err := store.UpsertMatch(tx.ID, rec.ID, confidence, models.MatchStatusPending, false); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"receipt_id": rec.ID, "transaction_id": tx.ID, "confidence": confidence})
}

// matchFromPath loads the :id match and checks it belongs to the caller via
// the receipt side.
func matchFromPath(c *gin.Context) (*models.Match, bool) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return nil, false
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return nil, false
	}
	var m models.Match
	if err := db.Select("matches.*").
		Joins("JOIN receipts ON receipts.id = matches.receipt_id").
		Where("matches.id = ? AND receipts.user_id = ?", id, user.ID).First(&m).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "match not found"})
		return nil, false
	}
	return &m, true
}

// confirmMatchHandler flips status and the user-confirmed flag together. A
// transaction or receipt carries at most one confirmed row; the guard keeps
// the response a 409 instead of a partial-index violation from the database.
func confirmMatchHandler(c *gin.Context) {
	m, ok := matchFromPath(c)
	if !ok {
		return
	}
	var taken int64
	err := db.Model(&models.Match{}).
		Where("id <> ? AND user_confirmed = ?", m.ID, true).
		Where("transaction_id = ? OR receipt_id = ?", m.TransactionID, m.ReceiptID).
		Count(&taken).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	if taken > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "transaction or receipt already has a confirmed match"})
		return
	}
	err = db.Model(m).Updates(map[string]interface{}{
		"status":         models.MatchStatusConfirmed,
		"user_confirmed": true,
	}).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": m.ID, "status": models.MatchStatusConfirmed})
}

func rejectMatchHandler(c *gin.Context) {
	m, ok := matchFromPath(c)
	if !ok {
		return
	}
	err := db.Model(m).Updates(map[string]interface{}{
		"status":         models.MatchStatusRejected,
		"user_confirmed": false,
	}).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": m.ID, "status": models.MatchStatusRejected})
}

func deleteMatchHandler(c *gin.Context) {
	m, ok := matchFromPath(c)
	if !ok {
		return
	}
	if err := db.Delete(m).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": m.ID})
}
