// Package backendtest provides an in-memory stand-in for the dairy ERP
// backend. Tests host it with httptest; it is also handy for local
// development against a fake co-op. Auth behavior is configurable so the
// transport's recovery protocol can be exercised end-to-end.
package backendtest

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dairyerp/dairyclient/internal/domain/models"
)

// Server is a fake dairy backend over in-memory fixtures.
type Server struct {
	mu sync.Mutex

	users       map[string]userFixture
	tokens      map[string]time.Time // token -> expiry
	farmers     []models.Farmer
	collections []models.MilkCollection
	nextFarmer  int
	nextColl    int

	// TokenTTL controls the expiry stamped on issued tokens.
	TokenTTL time.Duration
	// rejectNext forces 401s on the next N authenticated requests even for
	// valid tokens, so clients can observe the refresh-and-retry path.
	rejectNext int

	// Counters observed by tests.
	LoginCalls int
	AuthDenied int

	engine *gin.Engine
}

type userFixture struct {
	password string
	fullName string
	role     string
	userID   int
}

// New builds a fake backend with an admin/admin123 account preloaded.
func New() *Server {
	gin.SetMode(gin.TestMode)

	s := &Server{
		users: map[string]userFixture{
			"admin": {password: "admin123", fullName: "Admin User", role: "Admin", userID: 1},
		},
		tokens:     make(map[string]time.Time),
		TokenTTL:   time.Hour,
		nextFarmer: 1,
		nextColl:   1,
	}

	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/api/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.POST("/api/Auth/login", s.login)

	authed := r.Group("/api", s.authRequired)
	{
		authed.POST("/Auth/change-password", s.changePassword)

		authed.GET("/Farmers", s.listFarmers)
		authed.GET("/Farmers/search", s.searchFarmers)
		authed.GET("/Farmers/:id", s.getFarmer)
		authed.POST("/Farmers", s.createFarmer)
		authed.PUT("/Farmers/:id", s.updateFarmer)
		authed.DELETE("/Farmers/:id", s.deleteFarmer)

		authed.POST("/milkcollection/daily-collection", s.recordCollection)
		authed.POST("/milkcollection/bulk-collection", s.recordBulk)
		authed.GET("/milkcollection/daily-report", s.dailyReport)
		authed.GET("/milkcollection/summary", s.summary)
		authed.GET("/milkcollection/farmer-summary/:id", s.farmerSummary)
		authed.GET("/milkcollection/center-wise", s.centerWise)
		authed.POST("/milkcollection/calculate-rate", s.calculateRate)
		authed.GET("/milkcollection/export", s.export)
		authed.GET("/milkcollection/:id/receipt", s.receipt)
		authed.POST("/milkcollection/:id/mark-paid", s.markPaid)
		authed.GET("/milkcollection/:id", s.getCollection)
		authed.PUT("/milkcollection/:id", s.updateCollection)
		authed.DELETE("/milkcollection/:id", s.deleteCollection)
	}

	s.engine = r
	return s
}

// Handler returns the HTTP handler to mount in httptest.NewServer.
func (s *Server) Handler() http.Handler { return s.engine }

// SeedFarmers loads farmer fixtures, assigning ids.
func (s *Server) SeedFarmers(fs ...models.Farmer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range fs {
		if f.FarmerID == 0 {
			f.FarmerID = s.nextFarmer
		}
		if f.FarmerID >= s.nextFarmer {
			s.nextFarmer = f.FarmerID + 1
		}
		s.farmers = append(s.farmers, f)
	}
}

// SeedCollections loads collection fixtures, assigning ids.
func (s *Server) SeedCollections(cs ...models.MilkCollection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range cs {
		if c.CollectionID == 0 {
			c.CollectionID = s.nextColl
		}
		if c.CollectionID >= s.nextColl {
			s.nextColl = c.CollectionID + 1
		}
		s.collections = append(s.collections, c)
	}
}

// RejectNextAuthed forces the next n token-bearing requests to fail with
// 401 regardless of token validity.
func (s *Server) RejectNextAuthed(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rejectNext = n
}

// RevokeAllTokens invalidates every issued token.
func (s *Server) RevokeAllTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = make(map[string]time.Time)
}

func (s *Server) login(c *gin.Context) {
	var creds models.Credentials
	if err := c.ShouldBindJSON(&creds); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "malformed login payload"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.LoginCalls++

	user, ok := s.users[creds.Username]
	if !ok || user.password != creds.Password {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid username or password"})
		return
	}

	token := uuid.NewString()
	expiry := time.Now().Add(s.TokenTTL)
	s.tokens[token] = expiry

	c.JSON(http.StatusOK, models.Session{
		UserID:      user.userID,
		Username:    creds.Username,
		FullName:    user.fullName,
		Role:        user.role,
		Token:       token,
		TokenExpiry: expiry,
	})
}

func (s *Server) changePassword(c *gin.Context) {
	var req struct {
		OldPassword string `json:"oldPassword"`
		NewPassword string `json:"newPassword"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.NewPassword == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "newPassword is required"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// The fixture backend has one account per username; the old password
	// must match before the change is accepted.
	for name, user := range s.users {
		if user.password == req.OldPassword {
			user.password = req.NewPassword
			s.users[name] = user
			c.Status(http.StatusNoContent)
			return
		}
	}
	c.JSON(http.StatusBadRequest, gin.H{"message": "current password is incorrect"})
}

func (s *Server) authRequired(c *gin.Context) {
	const prefix = "Bearer "
	header := c.GetHeader("Authorization")
	if len(header) <= len(prefix) || header[:len(prefix)] != prefix {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "missing bearer token"})
		return
	}
	token := header[len(prefix):]

	s.mu.Lock()
	if s.rejectNext > 0 {
		s.rejectNext--
		s.AuthDenied++
		s.mu.Unlock()
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "token rejected"})
		return
	}
	expiry, ok := s.tokens[token]
	s.mu.Unlock()

	if !ok || time.Now().After(expiry) {
		s.mu.Lock()
		s.AuthDenied++
		s.mu.Unlock()
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "invalid or expired token"})
		return
	}

	c.Next()
}

func (s *Server) listFarmers(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.JSON(http.StatusOK, append([]models.Farmer(nil), s.farmers...))
}

func (s *Server) searchFarmers(c *gin.Context) {
	term := strings.ToLower(c.Query("searchTerm"))

	s.mu.Lock()
	defer s.mu.Unlock()
	matched := make([]models.Farmer, 0)
	for _, f := range s.farmers {
		if term == "" ||
			strings.Contains(strings.ToLower(f.FullName), term) ||
			strings.Contains(strings.ToLower(f.FarmerCode), term) ||
			strings.Contains(strings.ToLower(f.Village), term) {
			matched = append(matched, f)
		}
	}
	c.JSON(http.StatusOK, matched)
}

func (s *Server) getFarmer(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range s.farmers {
		if f.FarmerID == id {
			c.JSON(http.StatusOK, f)
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"message": fmt.Sprintf("farmer %d not found", id)})
}

func (s *Server) createFarmer(c *gin.Context) {
	var data models.CreateFarmer
	if err := c.ShouldBindJSON(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "malformed farmer payload"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, f := range s.farmers {
		if f.FarmerCode == data.FarmerCode {
			c.JSON(http.StatusConflict, gin.H{"message": "farmer code already exists"})
			return
		}
	}

	farmer := models.Farmer{
		FarmerID:         s.nextFarmer,
		FarmerCode:       data.FarmerCode,
		FullName:         data.FullName,
		ContactNumber:    data.ContactNumber,
		Village:          data.Village,
		RegistrationDate: time.Now(),
		IsActive:         true,
	}
	s.nextFarmer++
	s.farmers = append(s.farmers, farmer)
	c.JSON(http.StatusCreated, farmer)
}

func (s *Server) updateFarmer(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))
	var data models.UpdateFarmer
	if err := c.ShouldBindJSON(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "malformed farmer payload"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.farmers {
		if s.farmers[i].FarmerID != id {
			continue
		}
		if data.FullName != nil {
			s.farmers[i].FullName = *data.FullName
		}
		if data.Village != nil {
			s.farmers[i].Village = *data.Village
		}
		if data.ContactNumber != nil {
			s.farmers[i].ContactNumber = *data.ContactNumber
		}
		if data.IsActive != nil {
			s.farmers[i].IsActive = *data.IsActive
		}
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusNotFound, gin.H{"message": fmt.Sprintf("farmer %d not found", id)})
}

func (s *Server) deleteFarmer(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.farmers {
		if s.farmers[i].FarmerID == id {
			s.farmers[i].IsActive = false
			c.Status(http.StatusNoContent)
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"message": fmt.Sprintf("farmer %d not found", id)})
}

func (s *Server) recordCollection(c *gin.Context) {
	var coll models.MilkCollection
	if err := c.ShouldBindJSON(&coll); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "malformed collection payload"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	coll.CollectionID = s.nextColl
	s.nextColl++
	if coll.PaymentStatus == "" {
		coll.PaymentStatus = models.PaymentPending
	}
	s.collections = append(s.collections, coll)
	c.JSON(http.StatusCreated, coll)
}

func (s *Server) recordBulk(c *gin.Context) {
	var colls []models.MilkCollection
	if err := c.ShouldBindJSON(&colls); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "malformed bulk payload"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range colls {
		colls[i].CollectionID = s.nextColl
		s.nextColl++
		if colls[i].PaymentStatus == "" {
			colls[i].PaymentStatus = models.PaymentPending
		}
		s.collections = append(s.collections, colls[i])
	}
	c.JSON(http.StatusCreated, colls)
}

func (s *Server) dailyReport(c *gin.Context) {
	date := c.Query("date")
	centerID, _ := strconv.Atoi(c.Query("centerId"))

	s.mu.Lock()
	defer s.mu.Unlock()
	report := make([]models.MilkCollection, 0)
	for _, coll := range s.collections {
		if coll.CollectionDate != date {
			continue
		}
		if centerID != 0 && coll.CenterID != centerID {
			continue
		}
		report = append(report, coll)
	}
	c.JSON(http.StatusOK, report)
}

func (s *Server) summary(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "10"))
	farmerID, _ := strconv.Atoi(c.Query("farmerId"))

	s.mu.Lock()
	defer s.mu.Unlock()
	filtered := make([]models.MilkCollection, 0)
	for _, coll := range s.collections {
		if farmerID != 0 && coll.FarmerID != farmerID {
			continue
		}
		filtered = append(filtered, coll)
	}
	c.JSON(http.StatusOK, models.Paginate(filtered, page, pageSize))
}

func (s *Server) farmerSummary(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))
	fromDate := c.Query("fromDate")
	toDate := c.Query("toDate")

	s.mu.Lock()
	defer s.mu.Unlock()
	byDate := make(map[string]*models.CollectionSummary)
	order := make([]string, 0)
	fatTotals := make(map[string]float64)
	counts := make(map[string]int)
	for _, coll := range s.collections {
		if coll.FarmerID != id {
			continue
		}
		if fromDate != "" && coll.CollectionDate < fromDate {
			continue
		}
		if toDate != "" && coll.CollectionDate > toDate {
			continue
		}
		entry, ok := byDate[coll.CollectionDate]
		if !ok {
			entry = &models.CollectionSummary{Date: coll.CollectionDate, FarmerCount: 1}
			byDate[coll.CollectionDate] = entry
			order = append(order, coll.CollectionDate)
		}
		entry.TotalQuantity += coll.Quantity
		entry.TotalAmount += coll.TotalAmount
		fatTotals[coll.CollectionDate] += coll.FatPercentage
		counts[coll.CollectionDate]++
	}

	result := make([]models.CollectionSummary, 0, len(order))
	for _, date := range order {
		entry := byDate[date]
		if counts[date] > 0 {
			entry.AverageFat = fatTotals[date] / float64(counts[date])
		}
		result = append(result, *entry)
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) centerWise(c *gin.Context) {
	date := c.Query("date")

	s.mu.Lock()
	defer s.mu.Unlock()
	byCenter := make(map[int]*models.CenterCollection)
	order := make([]int, 0)
	fatTotals := make(map[int]float64)
	counts := make(map[int]int)
	for _, coll := range s.collections {
		if coll.CollectionDate != date {
			continue
		}
		entry, ok := byCenter[coll.CenterID]
		if !ok {
			entry = &models.CenterCollection{
				CenterID:   coll.CenterID,
				CenterCode: fmt.Sprintf("C%03d", coll.CenterID),
				CenterName: fmt.Sprintf("Center %d", coll.CenterID),
			}
			byCenter[coll.CenterID] = entry
			order = append(order, coll.CenterID)
		}
		entry.TotalQuantity += coll.Quantity
		entry.TotalAmount += coll.TotalAmount
		fatTotals[coll.CenterID] += coll.FatPercentage
		counts[coll.CenterID]++
	}

	result := make([]models.CenterCollection, 0, len(order))
	for _, id := range order {
		entry := byCenter[id]
		if counts[id] > 0 {
			entry.AverageFat = fatTotals[id] / float64(counts[id])
		}
		result = append(result, *entry)
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) calculateRate(c *gin.Context) {
	var req struct {
		FatPercentage float64 `json:"fatPercentage"`
		SNFPercentage float64 `json:"snfPercentage"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "malformed rate payload"})
		return
	}

	// Mirrors the co-op's published rate chart.
	rate := 50 + req.FatPercentage*2 + req.SNFPercentage*1.5
	c.JSON(http.StatusOK, gin.H{"ratePerLiter": float64(int(rate*100+0.5)) / 100})
}

func (s *Server) receipt(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))
	c.Data(http.StatusOK, "application/pdf", []byte(fmt.Sprintf("%%PDF receipt-%d", id)))
}

func (s *Server) export(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	body := "collectionId,farmerId,quantity,totalAmount\n"
	for _, coll := range s.collections {
		body += fmt.Sprintf("%d,%d,%.2f,%.2f\n", coll.CollectionID, coll.FarmerID, coll.Quantity, coll.TotalAmount)
	}
	c.Data(http.StatusOK, "text/csv", []byte(body))
}

func (s *Server) markPaid(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))
	var req struct {
		PaymentDate string `json:"paymentDate"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.PaymentDate == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "paymentDate is required"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.collections {
		if s.collections[i].CollectionID == id {
			s.collections[i].IsPaid = true
			s.collections[i].PaymentStatus = models.PaymentPaid
			s.collections[i].PaymentDate = req.PaymentDate
			c.Status(http.StatusNoContent)
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"message": fmt.Sprintf("collection %d not found", id)})
}

func (s *Server) getCollection(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, coll := range s.collections {
		if coll.CollectionID == id {
			c.JSON(http.StatusOK, coll)
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"message": fmt.Sprintf("collection %d not found", id)})
}

func (s *Server) updateCollection(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))
	var data models.MilkCollection
	if err := c.ShouldBindJSON(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "malformed collection payload"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.collections {
		if s.collections[i].CollectionID == id {
			data.CollectionID = id
			s.collections[i] = data
			c.JSON(http.StatusOK, data)
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"message": fmt.Sprintf("collection %d not found", id)})
}

func (s *Server) deleteCollection(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.collections {
		if s.collections[i].CollectionID == id {
			s.collections = append(s.collections[:i], s.collections[i+1:]...)
			c.Status(http.StatusNoContent)
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"message": fmt.Sprintf("collection %d not found", id)})
}
