package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/nutqapp/nutq-backend/internal/apierr"
	"github.com/nutqapp/nutq-backend/internal/logger"
	"github.com/nutqapp/nutq-backend/internal/normalization"
	"github.com/nutqapp/nutq-backend/internal/repos"
	"github.com/nutqapp/nutq-backend/internal/types"
)

// bcryptCost matches the original deployment's work factor.
const bcryptCost = 12

const resetTokenTTL = 10 * time.Minute

type RegisterInput struct {
	Name           string
	Email          string
	Password       string
	Role           types.Role
	Phone          string
	Specialization string
	LicenseNumber  string
}

type ProfileUpdateInput struct {
	Name  string
	Email string
	Phone *string
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*Actor, string, error)
	Login(ctx context.Context, email, password string) (*Actor, string, error)
	Refresh(ctx context.Context, actor *Actor) (string, error)
	UpdateProfile(ctx context.Context, actor *Actor, in ProfileUpdateInput) error
	ChangePassword(ctx context.Context, actor *Actor, currentPassword, newPassword string) error
	ForgotPassword(ctx context.Context, email string) error
	VerifyResetToken(ctx context.Context, token string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
	VerifyEmail(ctx context.Context, token string) error
	ResendVerification(ctx context.Context, actor *Actor) error
	LinkedSpecialistOf(ctx context.Context, parent *types.Parent) (*types.Specialist, *types.Center, error)
	TokenTTL() time.Duration
}

type authService struct {
	db             *gorm.DB
	log            *logger.Logger
	parentRepo     repos.ParentRepo
	specialistRepo repos.SpecialistRepo
	adminRepo      repos.AdminRepo
	centerRepo     repos.CenterRepo
	counterRepo    repos.CounterRepo
	tokenService   TokenService
	mailer         Mailer
}

func NewAuthService(
	db *gorm.DB,
	log *logger.Logger,
	parentRepo repos.ParentRepo,
	specialistRepo repos.SpecialistRepo,
	adminRepo repos.AdminRepo,
	centerRepo repos.CenterRepo,
	counterRepo repos.CounterRepo,
	tokenService TokenService,
	mailer Mailer,
) AuthService {
	return &authService{
		db:             db,
		log:            log.With("service", "AuthService"),
		parentRepo:     parentRepo,
		specialistRepo: specialistRepo,
		adminRepo:      adminRepo,
		centerRepo:     centerRepo,
		counterRepo:    counterRepo,
		tokenService:   tokenService,
		mailer:         mailer,
	}
}

func (as *authService) Register(ctx context.Context, in RegisterInput) (*Actor, string, error) {
	in.Name = normalization.ParseInputString(in.Name)
	in.Email = normalization.NormalizeEmail(in.Email)
	in.Phone = normalization.ParseInputString(in.Phone)

	if in.Name == "" || in.Email == "" || in.Password == "" {
		return nil, "", apierr.BadRequest("missing_fields", errors.New("name, email and password are required"))
	}
	if len(in.Password) < 6 {
		return nil, "", apierr.BadRequest("weak_password", errors.New("password must be at least 6 characters"))
	}
	if in.Role != types.RoleParent && in.Role != types.RoleSpecialist {
		return nil, "", apierr.BadRequest("invalid_role", errors.New("Invalid role for registration"))
	}

	taken, err := as.emailTaken(ctx, in.Email)
	if err != nil {
		return nil, "", fmt.Errorf("check email namespace: %w", err)
	}
	if taken {
		return nil, "", apierr.BadRequest("email_taken", errors.New("User already exists"))
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}
	verificationCode, err := sixDigitCode()
	if err != nil {
		return nil, "", fmt.Errorf("generate verification code: %w", err)
	}

	var actor *Actor
	err = as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		switch in.Role {
		case types.RoleParent:
			staffID, sErr := nextDisplayID(ctx, tx, as.counterRepo, types.CounterParentStaffID, "PT-", as.parentRepo.MaxStaffSeq)
			if sErr != nil {
				return sErr
			}
			parent := &types.Parent{
				Name:              in.Name,
				Email:             in.Email,
				Password:          string(hashed),
				Role:              types.RoleParent,
				Phone:             in.Phone,
				StaffID:           staffID,
				VerificationToken: verificationCode,
			}
			if _, cErr := as.parentRepo.Create(ctx, tx, parent); cErr != nil {
				return fmt.Errorf("create parent: %w", cErr)
			}
			actor = &Actor{ID: parent.ID, Role: types.RoleParent, Name: parent.Name, Email: parent.Email, Parent: parent}
		case types.RoleSpecialist:
			staffID, sErr := nextDisplayID(ctx, tx, as.counterRepo, types.CounterSpecialistStaff, "SP-", as.specialistRepo.MaxStaffSeq)
			if sErr != nil {
				return sErr
			}
			specialist := &types.Specialist{
				Name:              in.Name,
				Email:             in.Email,
				Password:          string(hashed),
				Role:              types.RoleSpecialist,
				Phone:             in.Phone,
				Specialization:    in.Specialization,
				LicenseNumber:     in.LicenseNumber,
				StaffID:           staffID,
				VerificationToken: verificationCode,
			}
			if _, cErr := as.specialistRepo.Create(ctx, tx, specialist); cErr != nil {
				return fmt.Errorf("create specialist: %w", cErr)
			}
			actor = &Actor{ID: specialist.ID, Role: types.RoleSpecialist, Name: specialist.Name, Email: specialist.Email, Specialist: specialist}
		}
		return nil
	})
	if err != nil {
		return nil, "", err
	}

	if mErr := as.mailer.SendVerificationCode(ctx, actor.Email, verificationCode); mErr != nil {
		as.log.Warn("Verification email delivery failed", "email", actor.Email, "error", mErr)
	}

	token, err := as.tokenService.Issue(actor.ID, actor.Role)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}
	return actor, token, nil
}

// Login scans parent, then specialist, then admin stores; the three tables
// share one identity namespace. All failure modes surface as the same
// generic message.
func (as *authService) Login(ctx context.Context, email, password string) (*Actor, string, error) {
	email = normalization.NormalizeEmail(email)
	password = normalization.ParseInputString(password)
	if email == "" || password == "" {
		return nil, "", apierr.BadRequest("missing_credentials", errors.New("Please provide email and password"))
	}

	actor, hashedPassword, err := as.findByEmail(ctx, email)
	if err != nil {
		return nil, "", err
	}
	if actor == nil {
		return nil, "", apierr.Unauthorized("invalid_credentials", errors.New("Invalid credentials"))
	}
	if bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)) != nil {
		return nil, "", apierr.Unauthorized("invalid_credentials", errors.New("Invalid credentials"))
	}

	token, err := as.tokenService.Issue(actor.ID, actor.Role)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}
	return actor, token, nil
}

// Refresh re-issues a token for an already-authenticated actor. There is no
// revocation list; short expiry is the only compromise mitigation.
func (as *authService) Refresh(ctx context.Context, actor *Actor) (string, error) {
	return as.tokenService.Issue(actor.ID, actor.Role)
}

func (as *authService) UpdateProfile(ctx context.Context, actor *Actor, in ProfileUpdateInput) error {
	newEmail := normalization.NormalizeEmail(in.Email)
	if newEmail != "" && newEmail != actor.Email {
		taken, err := as.emailTaken(ctx, newEmail)
		if err != nil {
			return fmt.Errorf("check email namespace: %w", err)
		}
		if taken {
			return apierr.BadRequest("email_taken", errors.New("Email already in use"))
		}
	}

	apply := func(name, email *string, verified *bool, phone *string) {
		if n := normalization.ParseInputString(in.Name); n != "" {
			*name = n
		}
		if newEmail != "" && newEmail != *email {
			*email = newEmail
			*verified = false
		}
		if in.Phone != nil {
			*phone = normalization.ParseInputString(*in.Phone)
		}
	}

	switch {
	case actor.Parent != nil:
		p := actor.Parent
		apply(&p.Name, &p.Email, &p.EmailVerified, &p.Phone)
		return as.parentRepo.Save(ctx, nil, p)
	case actor.Specialist != nil:
		s := actor.Specialist
		apply(&s.Name, &s.Email, &s.EmailVerified, &s.Phone)
		return as.specialistRepo.Save(ctx, nil, s)
	case actor.Admin != nil:
		a := actor.Admin
		apply(&a.Name, &a.Email, &a.EmailVerified, &a.Phone)
		return as.adminRepo.Save(ctx, nil, a)
	default:
		return apierr.Unauthorized("no_actor", ErrActorNotFound)
	}
}

func (as *authService) ChangePassword(ctx context.Context, actor *Actor, currentPassword, newPassword string) error {
	if currentPassword == "" || newPassword == "" {
		return apierr.BadRequest("missing_fields", errors.New("Please provide current and new password"))
	}
	if len(newPassword) < 6 {
		return apierr.BadRequest("weak_password", errors.New("password must be at least 6 characters"))
	}

	current := as.passwordOf(actor)
	if bcrypt.CompareHashAndPassword([]byte(current), []byte(currentPassword)) != nil {
		return apierr.BadRequest("wrong_password", errors.New("Current password is incorrect"))
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return as.setPassword(ctx, actor, string(hashed))
}

// ForgotPassword responds identically whether or not the account exists, to
// avoid enumeration.
func (as *authService) ForgotPassword(ctx context.Context, email string) error {
	email = normalization.NormalizeEmail(email)
	if email == "" {
		return apierr.BadRequest("missing_email", errors.New("Please provide email"))
	}
	actor, _, err := as.findByEmail(ctx, email)
	if err != nil {
		return err
	}
	if actor == nil {
		return nil
	}
	code, err := sixDigitCode()
	if err != nil {
		return fmt.Errorf("generate reset code: %w", err)
	}
	expire := time.Now().Add(resetTokenTTL)
	if err := as.setResetToken(ctx, actor, code, &expire); err != nil {
		return err
	}
	if mErr := as.mailer.SendPasswordResetCode(ctx, actor.Email, code); mErr != nil {
		// Roll the token back so a failed delivery does not leave a live code.
		_ = as.setResetToken(ctx, actor, "", nil)
		return apierr.Internal("email_failed", errors.New("Email could not be sent"))
	}
	return nil
}

func (as *authService) VerifyResetToken(ctx context.Context, token string) error {
	actor, err := as.findByResetToken(ctx, token)
	if err != nil {
		return err
	}
	if actor == nil {
		return apierr.BadRequest("invalid_reset_token", errors.New("Invalid or expired code"))
	}
	return nil
}

func (as *authService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if token == "" || newPassword == "" {
		return apierr.BadRequest("missing_fields", errors.New("Please provide code and new password"))
	}
	if len(newPassword) < 6 {
		return apierr.BadRequest("weak_password", errors.New("password must be at least 6 characters"))
	}
	actor, err := as.findByResetToken(ctx, token)
	if err != nil {
		return err
	}
	if actor == nil {
		return apierr.BadRequest("invalid_reset_token", errors.New("Invalid or expired code"))
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := as.setPassword(ctx, actor, string(hashed)); err != nil {
		return err
	}
	return as.setResetToken(ctx, actor, "", nil)
}

func (as *authService) VerifyEmail(ctx context.Context, token string) error {
	if token == "" {
		return apierr.BadRequest("missing_token", errors.New("Verification token is required"))
	}
	if parent, err := as.parentRepo.GetByVerificationToken(ctx, nil, token); err == nil {
		parent.EmailVerified = true
		parent.VerificationToken = ""
		return as.parentRepo.Save(ctx, nil, parent)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if specialist, err := as.specialistRepo.GetByVerificationToken(ctx, nil, token); err == nil {
		specialist.EmailVerified = true
		specialist.VerificationToken = ""
		return as.specialistRepo.Save(ctx, nil, specialist)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if admin, err := as.adminRepo.GetByVerificationToken(ctx, nil, token); err == nil {
		admin.EmailVerified = true
		admin.VerificationToken = ""
		return as.adminRepo.Save(ctx, nil, admin)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return apierr.BadRequest("invalid_verification_token", errors.New("Invalid verification token"))
}

func (as *authService) ResendVerification(ctx context.Context, actor *Actor) error {
	if actor.EmailVerified {
		return apierr.BadRequest("already_verified", errors.New("Email already verified"))
	}
	code, err := sixDigitCode()
	if err != nil {
		return fmt.Errorf("generate verification code: %w", err)
	}
	if err := as.setVerificationToken(ctx, actor, code); err != nil {
		return err
	}
	if mErr := as.mailer.SendVerificationCode(ctx, actor.Email, code); mErr != nil {
		return apierr.Internal("email_failed", errors.New("Email could not be sent"))
	}
	return nil
}

func (as *authService) LinkedSpecialistOf(ctx context.Context, parent *types.Parent) (*types.Specialist, *types.Center, error) {
	if parent.LinkedSpecialistID == nil {
		return nil, nil, apierr.NotFound("no_specialist", errors.New("No specialist linked to this account"))
	}
	specialist, err := as.specialistRepo.GetByID(ctx, nil, *parent.LinkedSpecialistID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apierr.NotFound("no_specialist", errors.New("No specialist linked to this account"))
		}
		return nil, nil, err
	}
	var center *types.Center
	if specialist.CenterID != nil {
		center, err = as.centerRepo.GetByID(ctx, nil, *specialist.CenterID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, err
		}
	}
	return specialist, center, nil
}

func (as *authService) TokenTTL() time.Duration {
	return as.tokenService.TTL()
}

func (as *authService) emailTaken(ctx context.Context, email string) (bool, error) {
	for _, exists := range []func(context.Context, *gorm.DB, string) (bool, error){
		as.parentRepo.EmailExists,
		as.specialistRepo.EmailExists,
		as.adminRepo.EmailExists,
	} {
		taken, err := exists(ctx, nil, email)
		if err != nil {
			return false, err
		}
		if taken {
			return true, nil
		}
	}
	return false, nil
}

func (as *authService) findByEmail(ctx context.Context, email string) (*Actor, string, error) {
	if parent, err := as.parentRepo.GetByEmail(ctx, nil, email); err == nil {
		return &Actor{ID: parent.ID, Role: types.RoleParent, Name: parent.Name, Email: parent.Email, EmailVerified: parent.EmailVerified, Parent: parent}, parent.Password, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", err
	}
	if specialist, err := as.specialistRepo.GetByEmail(ctx, nil, email); err == nil {
		return &Actor{ID: specialist.ID, Role: types.RoleSpecialist, Name: specialist.Name, Email: specialist.Email, EmailVerified: specialist.EmailVerified, Specialist: specialist}, specialist.Password, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", err
	}
	if admin, err := as.adminRepo.GetByEmail(ctx, nil, email); err == nil {
		return &Actor{ID: admin.ID, Role: admin.Role, Name: admin.Name, Email: admin.Email, EmailVerified: admin.EmailVerified, Admin: admin}, admin.Password, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", err
	}
	return nil, "", nil
}

func (as *authService) findByResetToken(ctx context.Context, token string) (*Actor, error) {
	if token == "" {
		return nil, apierr.BadRequest("missing_token", errors.New("Reset token is required"))
	}
	now := time.Now()
	valid := func(expire *time.Time) bool {
		return expire != nil && expire.After(now)
	}
	if parent, err := as.parentRepo.GetByResetToken(ctx, nil, token); err == nil {
		if valid(parent.ResetPasswordExpire) {
			return &Actor{ID: parent.ID, Role: types.RoleParent, Email: parent.Email, Parent: parent}, nil
		}
		return nil, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if specialist, err := as.specialistRepo.GetByResetToken(ctx, nil, token); err == nil {
		if valid(specialist.ResetPasswordExpire) {
			return &Actor{ID: specialist.ID, Role: types.RoleSpecialist, Email: specialist.Email, Specialist: specialist}, nil
		}
		return nil, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if admin, err := as.adminRepo.GetByResetToken(ctx, nil, token); err == nil {
		if valid(admin.ResetPasswordExpire) {
			return &Actor{ID: admin.ID, Role: admin.Role, Email: admin.Email, Admin: admin}, nil
		}
		return nil, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	return nil, nil
}

func (as *authService) passwordOf(actor *Actor) string {
	switch {
	case actor.Parent != nil:
		return actor.Parent.Password
	case actor.Specialist != nil:
		return actor.Specialist.Password
	case actor.Admin != nil:
		return actor.Admin.Password
	default:
		return ""
	}
}

func (as *authService) setPassword(ctx context.Context, actor *Actor, hashed string) error {
	switch {
	case actor.Parent != nil:
		actor.Parent.Password = hashed
		return as.parentRepo.Save(ctx, nil, actor.Parent)
	case actor.Specialist != nil:
		actor.Specialist.Password = hashed
		return as.specialistRepo.Save(ctx, nil, actor.Specialist)
	case actor.Admin != nil:
		actor.Admin.Password = hashed
		return as.adminRepo.Save(ctx, nil, actor.Admin)
	default:
		return apierr.Unauthorized("no_actor", ErrActorNotFound)
	}
}

func (as *authService) setResetToken(ctx context.Context, actor *Actor, token string, expire *time.Time) error {
	switch {
	case actor.Parent != nil:
		actor.Parent.ResetPasswordToken = token
		actor.Parent.ResetPasswordExpire = expire
		return as.parentRepo.Save(ctx, nil, actor.Parent)
	case actor.Specialist != nil:
		actor.Specialist.ResetPasswordToken = token
		actor.Specialist.ResetPasswordExpire = expire
		return as.specialistRepo.Save(ctx, nil, actor.Specialist)
	case actor.Admin != nil:
		actor.Admin.ResetPasswordToken = token
		actor.Admin.ResetPasswordExpire = expire
		return as.adminRepo.Save(ctx, nil, actor.Admin)
	default:
		return apierr.Unauthorized("no_actor", ErrActorNotFound)
	}
}

func (as *authService) setVerificationToken(ctx context.Context, actor *Actor, token string) error {
	switch {
	case actor.Parent != nil:
		actor.Parent.VerificationToken = token
		return as.parentRepo.Save(ctx, nil, actor.Parent)
	case actor.Specialist != nil:
		actor.Specialist.VerificationToken = token
		return as.specialistRepo.Save(ctx, nil, actor.Specialist)
	case actor.Admin != nil:
		actor.Admin.VerificationToken = token
		return as.adminRepo.Save(ctx, nil, actor.Admin)
	default:
		return apierr.Unauthorized("no_actor", ErrActorNotFound)
	}
}

func sixDigitCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
