package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/divvyhq/divvy/internal/apperr"
	"github.com/divvyhq/divvy/internal/models"
	"github.com/divvyhq/divvy/internal/service"
)

// statusFor maps error kinds onto HTTP status codes.
func statusFor(err error) int {
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindPermission:
		return http.StatusForbidden
	case apperr.KindState, apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusBadGateway
	}
}

func respondErr(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{
		"kind":  string(apperr.KindOf(err)),
		"error": err.Error(),
	})
}

type registerRequest struct {
	Email    string `json:"email" binding:"required"`
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (s *Server) handleRegister(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := s.auth.Register(c.Request.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	token, err := s.jwtManager.Generate(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"token": token,
		"user":  gin.H{"id": user.ID, "name": user.Name, "email": user.Email},
	})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (s *Server) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := s.auth.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	token, err := s.jwtManager.Generate(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  gin.H{"id": user.ID, "name": user.Name, "email": user.Email},
	})
}

type createGroupRequest struct {
	Name        string   `json:"name" binding:"required"`
	Description string   `json:"description"`
	Address     string   `json:"address"`
	Categories  []string `json:"categories"`
}

func (s *Server) handleCreateGroup(c *gin.Context) {
	var req createGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	group, err := s.membership.CreateGroup(c.Request.Context(), currentPrincipal(c), service.CreateGroupInput{
		Name:        req.Name,
		Description: req.Description,
		Address:     req.Address,
		Categories:  req.Categories,
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, group)
}

func (s *Server) handleGetGroup(c *gin.Context) {
	group, err := s.membership.GetGroup(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, group)
}

func (s *Server) handleArchiveGroup(c *gin.Context) {
	if err := s.membership.ArchiveGroup(c.Request.Context(), currentPrincipal(c), c.Param("id")); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": models.GroupStatusArchived})
}

type addMemberRequest struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	IsAdmin bool   `json:"is_admin"`
}

func (s *Server) handleAddMember(c *gin.Context) {
	var req addMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	member, err := s.membership.AddMember(c.Request.Context(), currentPrincipal(c), c.Param("id"), service.AddMemberInput{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		IsAdmin: req.IsAdmin,
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, member)
}

func (s *Server) handleListMembers(c *gin.Context) {
	groupID := c.Param("id")
	isMember, err := s.membership.IsGroupMember(c.Request.Context(), groupID, currentPrincipal(c))
	if err != nil {
		respondErr(c, err)
		return
	}
	if !isMember {
		respondErr(c, apperr.New(apperr.KindPermission, "not a member of group %s", groupID))
		return
	}
	members, err := s.membership.ListMembers(c.Request.Context(), groupID)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"members": members})
}

type addExpenseRequest struct {
	Description string  `json:"description" binding:"required"`
	Amount      float64 `json:"amount" binding:"required"`
	Category    string  `json:"category"`
	Date        int64   `json:"date"`
	PaidBy      string  `json:"paid_by" binding:"required"`
	SplitType   string  `json:"split_type"`
	Splits      []struct {
		MemberID string  `json:"member_id"`
		Amount   float64 `json:"amount"`
	} `json:"splits"`
	// SplitAmong requests an equal split across the given members instead of
	// explicit split amounts.
	SplitAmong []string `json:"split_among"`
}

func (s *Server) handleAddExpense(c *gin.Context) {
	var req addExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := service.AddExpenseInput{
		Description: req.Description,
		Amount:      req.Amount,
		Category:    req.Category,
		Date:        req.Date,
		PaidBy:      req.PaidBy,
		SplitType:   req.SplitType,
	}
	if len(req.SplitAmong) > 0 {
		input.SplitType = models.SplitTypeEqual
		input.Splits = service.EqualSplits(req.Amount, req.SplitAmong)
	} else {
		for _, split := range req.Splits {
			input.Splits = append(input.Splits, models.Split{MemberID: split.MemberID, Amount: split.Amount})
		}
	}

	expense, err := s.expenses.AddExpense(c.Request.Context(), currentPrincipal(c), c.Param("id"), input)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, expense)
}

func (s *Server) handleListExpenses(c *gin.Context) {
	expenses, err := s.expenses.ListExpenses(c.Request.Context(), currentPrincipal(c), c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"expenses": expenses})
}

type addSettlementRequest struct {
	FromMemberID string  `json:"from_member_id" binding:"required"`
	ToMemberID   string  `json:"to_member_id" binding:"required"`
	Amount       float64 `json:"amount" binding:"required"`
	Note         string  `json:"note"`
	Date         int64   `json:"date"`
}

func (s *Server) handleAddSettlement(c *gin.Context) {
	var req addSettlementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	settlement, err := s.settlements.AddSettlement(c.Request.Context(), currentPrincipal(c), c.Param("id"), service.AddSettlementInput{
		FromMemberID: req.FromMemberID,
		ToMemberID:   req.ToMemberID,
		Amount:       req.Amount,
		Note:         req.Note,
		Date:         req.Date,
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, settlement)
}

func (s *Server) handleListSettlements(c *gin.Context) {
	settlements, err := s.settlements.ListSettlements(c.Request.Context(), currentPrincipal(c), c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"settlements": settlements})
}

func (s *Server) handleBalances(c *gin.Context) {
	groupID := c.Param("id")
	isMember, err := s.membership.IsGroupMember(c.Request.Context(), groupID, currentPrincipal(c))
	if err != nil {
		respondErr(c, err)
		return
	}
	if !isMember {
		respondErr(c, apperr.New(apperr.KindPermission, "not a member of group %s", groupID))
		return
	}
	c.JSON(http.StatusOK, gin.H{"balances": s.balances.CalculateBalances(c.Request.Context(), groupID)})
}

func (s *Server) handleSettleUp(c *gin.Context) {
	groupID := c.Param("id")
	isMember, err := s.membership.IsGroupMember(c.Request.Context(), groupID, currentPrincipal(c))
	if err != nil {
		respondErr(c, err)
		return
	}
	if !isMember {
		respondErr(c, apperr.New(apperr.KindPermission, "not a member of group %s", groupID))
		return
	}
	c.JSON(http.StatusOK, gin.H{"payments": s.balances.SimplifyDebts(c.Request.Context(), groupID)})
}
