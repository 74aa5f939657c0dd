package handlers

import (
	"errors"
	"log"
	"net/mail"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/munhub-dev/munhub/internal/apperrors"
	"github.com/munhub-dev/munhub/internal/mailer"
	"github.com/munhub-dev/munhub/internal/models"
	"github.com/munhub-dev/munhub/internal/services"
	"github.com/munhub-dev/munhub/internal/storage"
	"github.com/munhub-dev/munhub/internal/types"
	"github.com/munhub-dev/munhub/internal/utils"
	"gorm.io/gorm"
)

type RegistrationHandler struct {
	DB         *gorm.DB
	Files      *storage.Store
	Dispatcher *mailer.Dispatcher
	Activity   *services.ActivityRecorder
}

func NewRegistrationHandler(conn *gorm.DB, files *storage.Store, dispatcher *mailer.Dispatcher, activity *services.ActivityRecorder) *RegistrationHandler {
	return &RegistrationHandler{DB: conn, Files: files, Dispatcher: dispatcher, Activity: activity}
}

var validGenders = map[string]bool{
	"male":              true,
	"female":            true,
	"other":             true,
	"prefer-not-to-say": true,
}

type preference struct {
	Committee string
	Portfolio string
}

type RegistrationResponse struct {
	ID                 uint          `json:"id"`
	UserID             uint          `json:"userId"`
	Gender             string        `json:"gender"`
	Institution        string        `json:"institution"`
	IsInternal         bool          `json:"isInternal"`
	Preferences        []gin.H       `json:"preferences"`
	Status             string        `json:"status"`
	PaymentStatus      string        `json:"paymentStatus"`
	NeedsAccommodation bool          `json:"needsAccommodation"`
	IDDocument         string        `json:"idDocument"`
	MUNResume          string        `json:"munResume,omitempty"`
	Allocated          gin.H         `json:"allocated,omitempty"`
	User               *UserResponse `json:"user,omitempty"`
}

func toRegistrationResponse(reg models.Registration, includeUser bool) RegistrationResponse {
	resp := RegistrationResponse{
		ID:                 reg.ID,
		UserID:             reg.UserID,
		Gender:             reg.Gender,
		Institution:        reg.Institution,
		IsInternal:         reg.IsInternal,
		Status:             reg.Status,
		PaymentStatus:      reg.PaymentStatus,
		NeedsAccommodation: reg.NeedsAccommodation,
		IDDocument:         reg.IDDocumentPath,
		MUNResume:          reg.MUNResumePath,
		Preferences: []gin.H{
			{"committee": reg.Preference1Committee, "portfolio": reg.Preference1Portfolio},
			{"committee": reg.Preference2Committee, "portfolio": reg.Preference2Portfolio},
			{"committee": reg.Preference3Committee, "portfolio": reg.Preference3Portfolio},
		},
	}

	if reg.AllocatedCommittee != nil && reg.AllocatedPortfolio != nil {
		resp.Allocated = gin.H{
			"committee": reg.AllocatedCommittee.Name,
			"portfolio": reg.AllocatedPortfolio.Name,
		}
	}

	if includeUser {
		user := toUserResponse(reg.User)
		resp.User = &user
	}

	return resp
}

// Create accepts the delegate's multipart submission: form fields plus the
// idDocument file (required) and munResume (optional).
func (h *RegistrationHandler) Create(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		utils.Fail(ctx, apperrors.Unauthorized("User not authenticated"))
		return
	}

	var existing models.Registration

	err = h.DB.Where("user_id = ?", currentUser.ID).First(&existing).Error

	if err == nil {
		utils.Fail(ctx, apperrors.Conflict("You have already registered"))
		return
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.Fail(ctx, err)
		return
	}

	fields := make(map[string]string)

	gender := strings.ToLower(strings.TrimSpace(ctx.PostForm("gender")))
	institution := strings.TrimSpace(ctx.PostForm("institution"))
	email := strings.TrimSpace(ctx.PostForm("email"))
	isInternal := ctx.PostForm("isInternal") == "true"
	needsAccommodation := ctx.PostForm("needsAccommodation") == "true"

	if !validGenders[gender] {
		fields["gender"] = "must be one of: male, female, other, prefer-not-to-say"
	}

	if institution == "" {
		fields["institution"] = "is required"
	}

	if email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			fields["email"] = "must be a valid email address"
		}
	}

	var prefs [3]preference

	for i := range prefs {
		n := strconv.Itoa(i + 1)
		prefs[i].Committee = strings.TrimSpace(ctx.PostForm("preference" + n + "Committee"))
		prefs[i].Portfolio = strings.TrimSpace(ctx.PostForm("preference" + n + "Portfolio"))

		if prefs[i].Committee == "" {
			fields["preference"+n+"Committee"] = "is required"
		}
		if prefs[i].Portfolio == "" {
			fields["preference"+n+"Portfolio"] = "is required"
		}
	}

	idDocument, err := ctx.FormFile("idDocument")

	if err != nil {
		fields["idDocument"] = "is required"
	} else if violations := storage.Validate(idDocument, storage.PurposeDocuments); len(violations) > 0 {
		fields["idDocument"] = strings.Join(violations, "; ")
	}

	munResume, resumeErr := ctx.FormFile("munResume")

	if resumeErr == nil {
		if violations := storage.Validate(munResume, storage.PurposeDocuments); len(violations) > 0 {
			fields["munResume"] = strings.Join(violations, "; ")
		}
	}

	if len(fields) > 0 {
		utils.Fail(ctx, apperrors.Validation(fields))
		return
	}

	idDocumentPath, err := h.Files.Save(idDocument, storage.PurposeDocuments)

	if err != nil {
		log.Printf("Failed to store id document: %v", err)
		utils.Fail(ctx, err)
		return
	}

	var munResumePath string

	if resumeErr == nil {
		munResumePath, err = h.Files.Save(munResume, storage.PurposeDocuments)

		if err != nil {
			log.Printf("Failed to store resume: %v", err)
			h.cleanupFiles(idDocumentPath)
			utils.Fail(ctx, err)
			return
		}
	}

	registration := models.Registration{
		UserID:               currentUser.ID,
		Gender:               gender,
		Institution:          institution,
		IsInternal:           isInternal,
		NeedsAccommodation:   needsAccommodation,
		Preference1Committee: prefs[0].Committee,
		Preference1Portfolio: prefs[0].Portfolio,
		Preference2Committee: prefs[1].Committee,
		Preference2Portfolio: prefs[1].Portfolio,
		Preference3Committee: prefs[2].Committee,
		Preference3Portfolio: prefs[2].Portfolio,
		IDDocumentPath:       idDocumentPath,
		MUNResumePath:        munResumePath,
		Status:               types.RegistrationPending,
		PaymentStatus:        types.PaymentPending,
	}

	if err := h.DB.Create(&registration).Error; err != nil {
		h.cleanupFiles(idDocumentPath, munResumePath)
		utils.Fail(ctx, apperrors.Classify(err, "Registration"))
		return
	}

	if h.Dispatcher.Configured() {
		vars := map[string]string{
			"firstName": currentUser.Name,
			"status":    registration.Status,
		}
		if err := h.Dispatcher.SendTemplate("registration_received", currentUser.Email, vars); err != nil {
			log.Printf("Failed to send registration email to %s: %v", currentUser.Email, err)
		}
	}

	utils.Created(ctx, "Registration submitted", toRegistrationResponse(registration, false))
}

func (h *RegistrationHandler) cleanupFiles(paths ...string) {
	for _, path := range paths {
		if path == "" {
			continue
		}
		if err := h.Files.Delete(path); err != nil && !errors.Is(err, storage.ErrNotFound) {
			log.Printf("Failed to clean up file %s: %v", path, err)
		}
	}
}

// Mine returns the calling delegate's own registration.
func (h *RegistrationHandler) Mine(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		utils.Fail(ctx, apperrors.Unauthorized("User not authenticated"))
		return
	}

	var registration models.Registration

	err = h.DB.Preload("AllocatedCommittee").Preload("AllocatedPortfolio").
		Where("user_id = ?", currentUser.ID).First(&registration).Error

	if err != nil {
		utils.Fail(ctx, apperrors.Classify(err, "Registration"))
		return
	}

	utils.OK(ctx, "", toRegistrationResponse(registration, false))
}

// List is the admin review queue, filterable by status with pagination.
func (h *RegistrationHandler) List(ctx *gin.Context) {
	query := h.DB.Model(&models.Registration{}).
		Preload("User").Preload("AllocatedCommittee").Preload("AllocatedPortfolio")

	if status := ctx.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	if paymentStatus := ctx.Query("paymentStatus"); paymentStatus != "" {
		query = query.Where("payment_status = ?", paymentStatus)
	}

	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(ctx.DefaultQuery("perPage", "50"))

	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 200 {
		perPage = 50
	}

	var total int64

	if err := query.Count(&total).Error; err != nil {
		utils.Fail(ctx, err)
		return
	}

	var registrations []models.Registration

	err := query.Order("created_at ASC").
		Offset((page - 1) * perPage).Limit(perPage).
		Find(&registrations).Error

	if err != nil {
		utils.Fail(ctx, err)
		return
	}

	items := make([]RegistrationResponse, 0, len(registrations))
	for _, reg := range registrations {
		items = append(items, toRegistrationResponse(reg, true))
	}

	utils.OK(ctx, "", gin.H{
		"registrations": items,
		"total":         total,
		"page":          page,
		"perPage":       perPage,
	})
}

func (h *RegistrationHandler) Get(ctx *gin.Context) {
	id, err := strconv.Atoi(ctx.Param("id"))

	if err != nil {
		utils.Fail(ctx, apperrors.Validation(map[string]string{"id": "must be a number"}))
		return
	}

	var registration models.Registration

	err = h.DB.Preload("User").Preload("AllocatedCommittee").Preload("AllocatedPortfolio").
		First(&registration, id).Error

	if err != nil {
		utils.Fail(ctx, apperrors.Classify(err, "Registration"))
		return
	}

	utils.OK(ctx, "", toRegistrationResponse(registration, true))
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=shortlisted confirmed rejected"`
}

// legalTransitions is the review state machine: pending -> shortlisted ->
// confirmed, rejection allowed until a terminal state is reached.
var legalTransitions = map[string]map[string]bool{
	types.RegistrationPending: {
		types.RegistrationShortlisted: true,
		types.RegistrationRejected:    true,
	},
	types.RegistrationShortlisted: {
		types.RegistrationConfirmed: true,
		types.RegistrationRejected:  true,
	},
}

func (h *RegistrationHandler) UpdateStatus(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		utils.Fail(ctx, apperrors.Unauthorized("User not authenticated"))
		return
	}

	id, err := strconv.Atoi(ctx.Param("id"))

	if err != nil {
		utils.Fail(ctx, apperrors.Validation(map[string]string{"id": "must be a number"}))
		return
	}

	var req UpdateStatusRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Fail(ctx, apperrors.FromBinding(err))
		return
	}

	var registration models.Registration

	if err := h.DB.Preload("User").First(&registration, id).Error; err != nil {
		utils.Fail(ctx, apperrors.Classify(err, "Registration"))
		return
	}

	if !legalTransitions[registration.Status][req.Status] {
		utils.Fail(ctx, apperrors.Conflict("Cannot move registration from "+registration.Status+" to "+req.Status))
		return
	}

	previous := registration.Status

	if err := h.DB.Model(&registration).Update("status", req.Status).Error; err != nil {
		utils.Fail(ctx, err)
		return
	}

	h.Activity.Record(currentUser.ID, "registration.update_status", "Registration", registration.ID, map[string]interface{}{
		"from": previous,
		"to":   req.Status,
	})

	if req.Status == types.RegistrationShortlisted && h.Dispatcher.Configured() {
		vars := map[string]string{"firstName": registration.User.FirstName}
		if err := h.Dispatcher.SendTemplate("registration_shortlisted", registration.User.Email, vars); err != nil {
			log.Printf("Failed to send shortlist email to %s: %v", registration.User.Email, err)
		}
	}

	registration.Status = req.Status
	utils.OK(ctx, "Status updated", toRegistrationResponse(registration, false))
}

type AllocateRequest struct {
	CommitteeID uint `json:"committeeId" binding:"required"`
	PortfolioID uint `json:"portfolioId" binding:"required"`
}

// Allocate assigns a committee and portfolio to a registration and marks
// the portfolio taken.
func (h *RegistrationHandler) Allocate(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		utils.Fail(ctx, apperrors.Unauthorized("User not authenticated"))
		return
	}

	id, err := strconv.Atoi(ctx.Param("id"))

	if err != nil {
		utils.Fail(ctx, apperrors.Validation(map[string]string{"id": "must be a number"}))
		return
	}

	var req AllocateRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Fail(ctx, apperrors.FromBinding(err))
		return
	}

	var registration models.Registration

	if err := h.DB.Preload("User").First(&registration, id).Error; err != nil {
		utils.Fail(ctx, apperrors.Classify(err, "Registration"))
		return
	}

	var portfolio models.Portfolio

	if err := h.DB.Preload("Committee").First(&portfolio, req.PortfolioID).Error; err != nil {
		utils.Fail(ctx, apperrors.Classify(err, "Portfolio"))
		return
	}

	if portfolio.CommitteeID != req.CommitteeID {
		utils.Fail(ctx, apperrors.Validation(map[string]string{"portfolioId": "does not belong to the given committee"}))
		return
	}

	if portfolio.Allocated && (registration.AllocatedPortfolioID == nil || *registration.AllocatedPortfolioID != portfolio.ID) {
		utils.Fail(ctx, apperrors.Conflict("Portfolio is already allocated"))
		return
	}

	// Moving portfolios within the same committee does not change the
	// committee's registered count.
	sameCommittee := registration.AllocatedCommitteeID != nil && *registration.AllocatedCommitteeID == req.CommitteeID

	if !sameCommittee && portfolio.Committee.Capacity > 0 &&
		portfolio.Committee.RegisteredCount >= portfolio.Committee.Capacity {
		utils.Fail(ctx, apperrors.Conflict("Committee is at capacity"))
		return
	}

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		// Free a previously held portfolio on re-allocation.
		if registration.AllocatedPortfolioID != nil && *registration.AllocatedPortfolioID != portfolio.ID {
			if err := tx.Model(&models.Portfolio{}).
				Where("id = ?", *registration.AllocatedPortfolioID).
				Update("allocated", false).Error; err != nil {
				return err
			}
		}

		if !sameCommittee {
			if registration.AllocatedCommitteeID != nil {
				if err := tx.Model(&models.Committee{}).
					Where("id = ?", *registration.AllocatedCommitteeID).
					Update("registered_count", gorm.Expr("registered_count - 1")).Error; err != nil {
					return err
				}
			}

			if err := tx.Model(&models.Committee{}).
				Where("id = ?", req.CommitteeID).
				Update("registered_count", gorm.Expr("registered_count + 1")).Error; err != nil {
				return err
			}
		}

		if err := tx.Model(&registration).Updates(map[string]interface{}{
			"allocated_committee_id": req.CommitteeID,
			"allocated_portfolio_id": req.PortfolioID,
		}).Error; err != nil {
			return err
		}

		return tx.Model(&portfolio).Update("allocated", true).Error
	})

	if err != nil {
		utils.Fail(ctx, err)
		return
	}

	h.Activity.Record(currentUser.ID, "registration.allocate", "Registration", registration.ID, map[string]interface{}{
		"committeeId": req.CommitteeID,
		"portfolioId": req.PortfolioID,
	})

	if h.Dispatcher.Configured() {
		vars := map[string]string{
			"firstName": registration.User.FirstName,
			"committee": portfolio.Committee.Name,
			"portfolio": portfolio.Name,
		}
		if err := h.Dispatcher.SendTemplate("allocation_announced", registration.User.Email, vars); err != nil {
			log.Printf("Failed to send allocation email to %s: %v", registration.User.Email, err)
		}
	}

	utils.OK(ctx, "Registration allocated", nil)
}

// Delete removes the registration row and its uploaded files.
func (h *RegistrationHandler) Delete(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		utils.Fail(ctx, apperrors.Unauthorized("User not authenticated"))
		return
	}

	id, err := strconv.Atoi(ctx.Param("id"))

	if err != nil {
		utils.Fail(ctx, apperrors.Validation(map[string]string{"id": "must be a number"}))
		return
	}

	var registration models.Registration

	if err := h.DB.First(&registration, id).Error; err != nil {
		utils.Fail(ctx, apperrors.Classify(err, "Registration"))
		return
	}

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if registration.AllocatedPortfolioID != nil {
			if err := tx.Model(&models.Portfolio{}).
				Where("id = ?", *registration.AllocatedPortfolioID).
				Update("allocated", false).Error; err != nil {
				return err
			}
		}

		if registration.AllocatedCommitteeID != nil {
			if err := tx.Model(&models.Committee{}).
				Where("id = ?", *registration.AllocatedCommitteeID).
				Update("registered_count", gorm.Expr("registered_count - 1")).Error; err != nil {
				return err
			}
		}

		return tx.Unscoped().Delete(&registration).Error
	})

	if err != nil {
		utils.Fail(ctx, err)
		return
	}

	h.cleanupFiles(registration.IDDocumentPath, registration.MUNResumePath)

	h.Activity.Record(currentUser.ID, "registration.delete", "Registration", registration.ID, nil)

	utils.OK(ctx, "Registration deleted", nil)
}

// Stats returns review-queue counts for the admin dashboard.
func (h *RegistrationHandler) Stats(ctx *gin.Context) {
	type statusCount struct {
		Status string
		Count  int64
	}

	var byStatus []statusCount

	err := h.DB.Model(&models.Registration{}).
		Select("status, COUNT(*) as count").Group("status").Scan(&byStatus).Error

	if err != nil {
		utils.Fail(ctx, err)
		return
	}

	var paid int64

	if err := h.DB.Model(&models.Registration{}).Where("payment_status = ?", types.PaymentPaid).Count(&paid).Error; err != nil {
		utils.Fail(ctx, err)
		return
	}

	counts := gin.H{
		types.RegistrationPending:     int64(0),
		types.RegistrationShortlisted: int64(0),
		types.RegistrationConfirmed:   int64(0),
		types.RegistrationRejected:    int64(0),
	}

	var total int64

	for _, row := range byStatus {
		counts[row.Status] = row.Count
		total += row.Count
	}

	utils.OK(ctx, "", gin.H{
		"total":    total,
		"byStatus": counts,
		"paid":     paid,
	})
}
