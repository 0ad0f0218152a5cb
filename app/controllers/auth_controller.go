package controllers

import (
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/CareerForgeHQ/CareerForge/app/models"
	"github.com/CareerForgeHQ/CareerForge/app/repository"
	"github.com/CareerForgeHQ/CareerForge/internal/pkg/hcaptcha"
	"github.com/CareerForgeHQ/CareerForge/internal/pkg/licensing"
	"github.com/CareerForgeHQ/CareerForge/internal/pkg/mail"
	"github.com/CareerForgeHQ/CareerForge/internal/pkg/session"
	"github.com/CareerForgeHQ/CareerForge/internal/pkg/statistics"
	"github.com/CareerForgeHQ/CareerForge/internal/pkg/usercontext"
)

type registerRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	InvitationToken string `json:"invitation_token"`
	CaptchaToken    string `json:"captcha_token"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleRegister creates an account. Three paths converge here: invitation
// token, email-domain auto-enrollment, and plain free-tier signup. The first
// two run through the licensing service and share one seat accounting path.
func HandleRegister(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid request body")
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "name, email and password are required")
	}

	if hcaptcha.Enabled() {
		if valid, err := hcaptcha.Verify(req.CaptchaToken); err != nil || !valid {
			log.Printf("hCaptcha validation error: %v", err)
			return jsonError(c, fiber.StatusBadRequest, "captcha_failed", "Captcha validation failed. Please try again.")
		}
	}

	svc := licensing.GetService()

	// Invitation path
	if req.InvitationToken != "" {
		user, err := svc.EnrollWithInvitation(req.InvitationToken, req.Name, req.Password)
		if err != nil {
			return licensingError(c, err)
		}

		go statistics.UpdateStatisticsCache()

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"id":                user.ID,
			"email":             user.Email,
			"role":              user.Role,
			"subscription_tier": user.SubscriptionTier,
			"institution_id":    user.InstitutionID,
		})
	}

	// Domain auto-enrollment path
	repos := repository.GetGlobalRepositories()
	institution, err := repos.Institution.GetByDomain(models.EmailDomain(req.Email))
	if err == nil {
		user, err := svc.EnrollByDomain(institution, req.Name, req.Email, req.Password)
		if err != nil {
			return licensingError(c, err)
		}

		sendActivationMail(user)
		go statistics.UpdateStatisticsCache()

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"id":                user.ID,
			"email":             user.Email,
			"role":              user.Role,
			"subscription_tier": user.SubscriptionTier,
			"institution_id":    user.InstitutionID,
			"activation_sent":   true,
		})
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Registration failed")
	}

	// Independent free-tier signup
	user, err := models.CreateUser(req.Name, req.Email, req.Password)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", err.Error())
	}
	if err := user.GenerateActivationToken(); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Registration failed")
	}
	if err := repos.User.Create(user); err != nil {
		return createUserError(c, err)
	}

	sendActivationMail(user)
	go statistics.UpdateStatisticsCache()

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":                user.ID,
		"email":             user.Email,
		"subscription_tier": user.SubscriptionTier,
		"activation_sent":   true,
	})
}

func sendActivationMail(user *models.User) {
	if err := mail.SendMail(user.Email, mail.ActivationSubject(), mail.ActivationBody(user.ActivationToken)); err != nil {
		log.Printf("activation email to %s failed: %v", user.Email, err)
	}
}

// HandleActivate verifies an account via the emailed activation token.
func HandleActivate(c *fiber.Ctx) error {
	token := c.Params("token")
	if token == "" {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "token missing")
	}

	repo := repository.GetGlobalFactory().GetUserRepository()
	user, err := repo.GetByActivationToken(token)
	if err != nil {
		return jsonError(c, fiber.StatusNotFound, "not_found", "Invalid activation token")
	}

	user.IsVerified = true
	user.ActivationToken = ""
	user.ActivationSentAt = nil
	if err := repo.Update(user); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Activation failed")
	}

	return c.JSON(fiber.Map{"message": "Account activated"})
}

// HandleLogin authenticates by email and password and opens a session.
// Verification and license checks happen at the access gate, not here, so the
// failure responses stay specific.
func HandleLogin(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid request body")
	}

	repo := repository.GetGlobalFactory().GetUserRepository()
	user, err := repo.GetByEmail(req.Email)
	if err != nil || !user.CheckPassword(req.Password) {
		// Do not reveal whether the email exists.
		return jsonError(c, fiber.StatusUnauthorized, "unauthenticated", "Invalid email or password")
	}

	sess, err := session.GetSessionStore().Get(c)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Session error")
	}

	sess.Set(usercontext.AuthKey, true)
	sess.Set(usercontext.KeyUserID, user.ID)
	sess.Set(usercontext.KeyUsername, user.Name)
	sess.Set(usercontext.KeyIsAdmin, user.IsAdminRole())

	if err := sess.Save(); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Session error")
	}

	now := time.Now()
	user.LastLoginAt = &now
	if err := repo.Update(user); err != nil {
		log.Printf("updating last_login_at for user %d failed: %v", user.ID, err)
	}

	return c.JSON(fiber.Map{
		"id":                user.ID,
		"name":              user.Name,
		"email":             user.Email,
		"role":              user.Role,
		"subscription_tier": user.SubscriptionTier,
		"is_verified":       user.IsVerified,
	})
}

// HandleLogout destroys the session.
func HandleLogout(c *fiber.Ctx) error {
	sess, err := session.GetSessionStore().Get(c)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Session error")
	}
	if err := sess.Destroy(); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Session error")
	}
	return c.JSON(fiber.Map{"message": "Logged out"})
}

// HandleGetMe returns the authenticated user's account including license
// status for institutional members.
func HandleGetMe(c *fiber.Ctx) error {
	uc := usercontext.GetUserContext(c)

	repos := repository.GetGlobalRepositories()
	user, err := repos.User.GetByID(uc.UserID)
	if err != nil {
		return jsonError(c, fiber.StatusNotFound, "not_found", "User not found")
	}

	response := fiber.Map{
		"id":                user.ID,
		"name":              user.Name,
		"email":             user.Email,
		"role":              user.Role,
		"status":            user.Status,
		"subscription_tier": user.SubscriptionTier,
		"is_verified":       user.IsVerified,
		"created_at":        user.CreatedAt.UTC().Format(time.RFC3339),
		"last_login_at":     formatTimePtr(user.LastLoginAt),
		"last_active_at":    formatTimePtr(user.LastActiveAt),
	}

	if user.InstitutionID != nil {
		institution, err := repos.Institution.GetByID(*user.InstitutionID)
		if err == nil {
			seats, _ := repos.License.SeatAvailability(institution.ID)
			response["institution"] = fiber.Map{
				"id":     institution.ID,
				"uuid":   institution.UUID,
				"name":   institution.Name,
				"domain": institution.Domain,
				"seats":  seats,
			}
		}
	}

	return c.JSON(response)
}
