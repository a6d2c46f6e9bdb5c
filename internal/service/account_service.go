package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/festivaz/web-gateway/internal/backend"
	"github.com/festivaz/web-gateway/internal/domain"
	"github.com/festivaz/web-gateway/internal/events"
	"github.com/festivaz/web-gateway/internal/observability"
	"github.com/festivaz/web-gateway/internal/session"
	apperrors "github.com/festivaz/web-gateway/pkg/util"
)

// User-facing messages.
const (
	MsgCredentialsRequired = "Email and password are required."
	MsgNoToken             = "No token was returned from the server."
	MsgServerUnreachable   = "Cannot reach the server. Make sure the API is running."
	MsgLoginFailed         = "Login failed. Please try again."
	MsgRegistrationFailed  = "Registration failed. Please try again."
	MsgRequiredFields      = "Please fill in all required fields."
	MsgInvalidEmail        = "Enter a valid email address."
	MsgPasswordTooShort    = "Password must be at least 6 characters."
	MsgPasswordMismatch    = "Passwords do not match."
	MsgInvalidPhone        = "Phone number must be in E.164 format (e.g., +123456789)."

	MsgProviderSubmitted          = "Thanks! Your profile has been submitted for review."
	MsgProviderRegistrationFailed = "Unable to complete registration at the moment."
	MsgProviderPasswordTooShort   = "Password must be at least 8 characters."
	MsgProviderInvalidPhone       = "Enter a valid phone number."
	MsgProviderDescriptionTooLong = "Description must be at most 500 characters."
	MsgProviderInvalidSetting     = "Booking settings are out of range."
	MsgProviderInvalidJSON        = "Cancellation policy and payment methods must be valid JSON."
)

const (
	minPasswordLength         = 6
	minProviderPasswordLength = 8
	maxProviderDescription    = 500
)

var (
	emailPattern         = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	e164Pattern          = regexp.MustCompile(`^\+?[1-9]\d{1,14}$`)
	providerPhonePattern = regexp.MustCompile(`^[0-9()+\-\s]{7,15}$`)
)

// providerSetting is a numeric booking setting with its default and minimum.
type providerSetting struct {
	field string
	value **int
	def   int
	min   int
}

// AccountAPI is the subset of the backend used by account flows.
type AccountAPI interface {
	Login(ctx context.Context, creds domain.LoginCredentials) (domain.CachedUser, error)
	RegisterCustomer(ctx context.Context, reg domain.CustomerRegistration) (domain.CachedUser, error)
	GoogleLogin(ctx context.Context, idToken string) (domain.CachedUser, error)
	RegisterServiceProvider(ctx context.Context, reg domain.ServiceProviderRegistration) error
}

// LoginResult tells the caller where to navigate after a login.
type LoginResult struct {
	Redirect string
	Role     string
	User     domain.CachedUser
}

// SessionSnapshot is the session state as seen by the browser.
type SessionSnapshot struct {
	LoggedIn bool
	Role     string
	User     domain.CachedUser
}

// AccountService coordinates login, registration and logout for a session.
type AccountService struct {
	api        AccountAPI
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
	inflight   singleflight.Group
}

// AccountDependencies encapsulates collaborators of the account service.
type AccountDependencies struct {
	API        AccountAPI
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Logger     *zap.Logger
}

// NewAccountService builds the service.
func NewAccountService(deps AccountDependencies) *AccountService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AccountService{
		api:        deps.API,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     logger,
	}
}

// Login authenticates against the backend and stores the returned token and
// user record in the session. Identical concurrent submissions from one
// session share a single backend call; a submission that differs in any field
// makes its own.
func (s *AccountService) Login(ctx context.Context, sess *session.Context, creds domain.LoginCredentials) (*LoginResult, error) {
	creds.Email = strings.TrimSpace(creds.Email)
	if creds.Email == "" || creds.Password == "" {
		return nil, apperrors.NewValidationError(MsgCredentialsRequired, nil)
	}

	key := submissionKey(sess.ID(), "login", strings.ToLower(creds.Email), creds.Password)
	v, err, shared := s.inflight.Do(key, func() (any, error) {
		user, err := s.api.Login(ctx, creds)
		if err != nil {
			return nil, LoginError(err)
		}
		return s.establish(ctx, sess, user, "account")
	})
	if shared {
		s.logger.Debug("joined in-flight login", zap.String("session_id", sess.ID()))
	}
	if err != nil {
		s.metrics.RecordLogin("account", false)
		return nil, err
	}
	s.metrics.RecordLogin("account", true)
	return v.(*LoginResult), nil
}

// GoogleLogin exchanges a Google credential for a marketplace session.
func (s *AccountService) GoogleLogin(ctx context.Context, sess *session.Context, idToken string) (*LoginResult, error) {
	if strings.TrimSpace(idToken) == "" {
		return nil, apperrors.NewValidationError("No credential received.", nil)
	}
	v, err, _ := s.inflight.Do(submissionKey(sess.ID(), "google", idToken), func() (any, error) {
		user, err := s.api.GoogleLogin(ctx, idToken)
		if err != nil {
			return nil, LoginError(err)
		}
		return s.establish(ctx, sess, user, "google")
	})
	if err != nil {
		s.metrics.RecordLogin("google", false)
		return nil, err
	}
	s.metrics.RecordLogin("google", true)
	return v.(*LoginResult), nil
}

// Register validates and submits a customer registration. The returned user
// is cached; when the backend also returns a token the session is logged in.
func (s *AccountService) Register(ctx context.Context, sess *session.Context, reg domain.CustomerRegistration, confirmPassword string) (*LoginResult, error) {
	if err := validateRegistration(reg, confirmPassword); err != nil {
		return nil, err
	}

	reg.RolePermissions = domain.RoleCustomer
	reg.IsActive = true
	reg.Status = "Active"
	if reg.DateOfBirth != nil {
		iso, err := isoDate(*reg.DateOfBirth)
		if err != nil {
			return nil, apperrors.NewValidationError("Enter a valid date of birth.", nil)
		}
		reg.DateOfBirth = iso
	}

	raw, err := json.Marshal(reg)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	v, err, _ := s.inflight.Do(submissionKey(sess.ID(), "register", string(raw), confirmPassword), func() (any, error) {
		user, err := s.api.RegisterCustomer(ctx, reg)
		if err != nil {
			return nil, registrationError(err)
		}
		if user == nil {
			return &LoginResult{Redirect: domain.PathLanding}, nil
		}
		if err := sess.Tokens().SaveUser(ctx, user); err != nil {
			return nil, apperrors.NewInternalError(err)
		}
		result := &LoginResult{Redirect: domain.PathLanding, User: user}
		if token := user.Token(); token != "" {
			if err := sess.Tokens().SaveToken(ctx, token); err != nil {
				return nil, apperrors.NewInternalError(err)
			}
			result.Role, _ = sess.Role(ctx)
			result.Redirect = PostLoginPath(result.Role)
		}
		return result, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*LoginResult), nil
}

// RegisterServiceProvider validates and submits a service provider sign-up.
// The account is reviewed before it can log in, so the session is left
// untouched. It returns the confirmation shown to the applicant.
func (s *AccountService) RegisterServiceProvider(ctx context.Context, sess *session.Context, reg domain.ServiceProviderRegistration) (string, error) {
	if err := prepareProviderRegistration(&reg); err != nil {
		return "", err
	}

	raw, err := json.Marshal(reg)
	if err != nil {
		return "", apperrors.NewInternalError(err)
	}
	_, err, _ = s.inflight.Do(submissionKey(sess.ID(), "register-provider", string(raw)), func() (any, error) {
		if err := s.api.RegisterServiceProvider(ctx, reg); err != nil {
			return nil, providerRegistrationError(err)
		}
		return nil, nil
	})
	if err != nil {
		return "", err
	}
	return MsgProviderSubmitted, nil
}

// Logout clears the session. It succeeds on an already empty session.
func (s *AccountService) Logout(ctx context.Context, sess *session.Context) error {
	hadState := sess.HasToken(ctx)
	if _, ok := sess.User(ctx); ok {
		hadState = true
	}
	if err := sess.Logout(ctx); err != nil {
		return apperrors.NewInternalError(err)
	}
	if hadState {
		s.publish(ctx, events.NewEvent(events.EventSessionLogout, sess.ID()))
	}
	return nil
}

// Snapshot reports the session state. A stored token that is no longer live
// clears both the token and the cached user, as the browser app does on load.
func (s *AccountService) Snapshot(ctx context.Context, sess *session.Context) (*SessionSnapshot, error) {
	if !sess.IsLoggedIn(ctx) {
		hadToken := sess.HasToken(ctx)
		if err := sess.Logout(ctx); err != nil {
			return nil, apperrors.NewInternalError(err)
		}
		if hadToken {
			s.publish(ctx, events.NewEvent(events.EventSessionExpired, sess.ID()))
		}
		return &SessionSnapshot{}, nil
	}
	role, _ := sess.Role(ctx)
	user, _ := sess.User(ctx)
	return &SessionSnapshot{LoggedIn: true, Role: role, User: user}, nil
}

func (s *AccountService) establish(ctx context.Context, sess *session.Context, user domain.CachedUser, flow string) (*LoginResult, error) {
	token := user.Token()
	if token == "" {
		return nil, apperrors.NewBadGateway(MsgNoToken, nil)
	}
	if err := sess.Tokens().SaveUser(ctx, user); err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if err := sess.Tokens().SaveToken(ctx, token); err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	role, _ := sess.Role(ctx)
	result := &LoginResult{Redirect: PostLoginPath(role), Role: role, User: user}

	event := events.NewEvent(events.EventSessionLogin, sess.ID())
	event.Role = role
	event.Payload = events.LoginPayload{Flow: flow, UserID: user.ID(), Redirect: result.Redirect}
	s.publish(ctx, event)
	return result, nil
}

// submissionKey identifies one exact form submission of a session. Field
// values are hashed so credentials never sit in the in-flight table.
func submissionKey(sid, flow string, fields ...string) string {
	h := sha256.New()
	for _, f := range fields {
		h.Write([]byte(f))
		h.Write([]byte{0})
	}
	return sid + "|" + flow + "|" + hex.EncodeToString(h.Sum(nil))
}

func (s *AccountService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("publish account event", zap.String("type", string(event.Type)), zap.Error(err))
	}
}

// PostLoginPath maps the token's role claim (exact match) to the section a
// fresh login lands on. Unknown roles land on the guest home page.
func PostLoginPath(role string) string {
	parsed, ok := domain.RoleFromClaim(role)
	if !ok {
		return domain.PathLanding
	}
	return parsed.SectionPath()
}

// LoginError converts a backend failure into a DomainError whose message is
// safe to show on the login form.
func LoginError(err error) error {
	var transportErr *backend.TransportError
	if errors.As(err, &transportErr) {
		return apperrors.NewUnavailable(MsgServerUnreachable, err)
	}
	var httpErr *backend.HTTPError
	if errors.As(err, &httpErr) {
		msg := httpErr.Message()
		if msg == "" {
			msg = httpErr.Error()
		}
		return upstreamStatusError(httpErr.Status, msg, err)
	}
	var domainErr *apperrors.DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return apperrors.NewBadGateway(MsgLoginFailed, err)
}

func registrationError(err error) error {
	var transportErr *backend.TransportError
	if errors.As(err, &transportErr) {
		return apperrors.NewUnavailable(MsgServerUnreachable, err)
	}
	var httpErr *backend.HTTPError
	if errors.As(err, &httpErr) {
		msg := httpErr.Message()
		if msg == "" {
			msg = MsgRegistrationFailed
		}
		return upstreamStatusError(httpErr.Status, msg, err)
	}
	return apperrors.NewBadGateway(MsgRegistrationFailed, err)
}

// upstreamStatusError keeps client errors from the backend as they are and
// reports server errors as a bad gateway.
func upstreamStatusError(status int, msg string, err error) error {
	if status >= 400 && status < 500 {
		return &apperrors.DomainError{Code: "REQUEST_REJECTED", Message: msg, HTTPStatus: status, Err: err}
	}
	return apperrors.NewBadGateway(msg, err)
}

func validateRegistration(reg domain.CustomerRegistration, confirmPassword string) error {
	if reg.Email == "" || reg.Password == "" || reg.CustomerName == "" || reg.CustomerPhone == "" || confirmPassword == "" {
		return apperrors.NewValidationError(MsgRequiredFields, nil)
	}
	if !emailPattern.MatchString(reg.Email) {
		return apperrors.NewValidationError(MsgInvalidEmail, map[string]any{"field": "email"})
	}
	if len(reg.Password) < minPasswordLength {
		return apperrors.NewValidationError(MsgPasswordTooShort, map[string]any{"field": "password"})
	}
	if reg.Password != confirmPassword {
		return apperrors.NewValidationError(MsgPasswordMismatch, map[string]any{"field": "confirmPassword"})
	}
	if !e164Pattern.MatchString(reg.CustomerPhone) {
		return apperrors.NewValidationError(MsgInvalidPhone, map[string]any{"field": "customerPhone"})
	}
	return nil
}

// prepareProviderRegistration trims free text, applies defaults and validates
// the sign-up in place.
func prepareProviderRegistration(reg *domain.ServiceProviderRegistration) error {
	reg.Email = strings.TrimSpace(reg.Email)
	reg.Description = strings.TrimSpace(reg.Description)
	reg.BusinessLicense = strings.TrimSpace(reg.BusinessLicense)
	reg.TaxID = strings.TrimSpace(reg.TaxID)
	reg.RolePermissions = domain.RoleServiceProvider
	if reg.IsActive == nil {
		active := true
		reg.IsActive = &active
	}

	required := []string{reg.Email, reg.Password, reg.CompanyName, reg.BrandName, reg.Phone,
		reg.AddressLine1, reg.City, reg.District, reg.PostalCode, reg.Country}
	for _, v := range required {
		if strings.TrimSpace(v) == "" {
			return apperrors.NewValidationError(MsgRequiredFields, nil)
		}
	}
	if !emailPattern.MatchString(reg.Email) {
		return apperrors.NewValidationError(MsgInvalidEmail, map[string]any{"field": "email"})
	}
	if len(reg.Password) < minProviderPasswordLength {
		return apperrors.NewValidationError(MsgProviderPasswordTooShort, map[string]any{"field": "password"})
	}
	if !providerPhonePattern.MatchString(reg.Phone) {
		return apperrors.NewValidationError(MsgProviderInvalidPhone, map[string]any{"field": "phone"})
	}
	if len([]rune(reg.Description)) > maxProviderDescription {
		return apperrors.NewValidationError(MsgProviderDescriptionTooLong, map[string]any{"field": "description"})
	}

	settings := []providerSetting{
		{field: "maxConcurrentBookings", value: &reg.MaxConcurrentBookings, def: 5, min: 1},
		{field: "minLeadTimeDays", value: &reg.MinLeadTimeDays, def: 3, min: 0},
		{field: "bookingWindowDays", value: &reg.BookingWindowDays, def: 90, min: 7},
		{field: "creditPeriod", value: &reg.CreditPeriod, def: 90, min: 0},
	}
	for _, setting := range settings {
		if *setting.value == nil {
			def := setting.def
			*setting.value = &def
		}
		if **setting.value < setting.min {
			return apperrors.NewValidationError(MsgProviderInvalidSetting, map[string]any{"field": setting.field, "min": setting.min})
		}
	}

	reg.CancellationPolicy = jsonOrDefault(reg.CancellationPolicy, "{}")
	reg.PaymentMethods = jsonOrDefault(reg.PaymentMethods, "[]")
	if !json.Valid([]byte(reg.CancellationPolicy)) {
		return apperrors.NewValidationError(MsgProviderInvalidJSON, map[string]any{"field": "cancellationPolicy"})
	}
	if !json.Valid([]byte(reg.PaymentMethods)) {
		return apperrors.NewValidationError(MsgProviderInvalidJSON, map[string]any{"field": "paymentMethods"})
	}
	return nil
}

func jsonOrDefault(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return value
}

// providerRegistrationError prefers a problem-details title over a message
// field, as the sign-up wizard shows it.
func providerRegistrationError(err error) error {
	var transportErr *backend.TransportError
	if errors.As(err, &transportErr) {
		return apperrors.NewUnavailable(MsgServerUnreachable, err)
	}
	var httpErr *backend.HTTPError
	if errors.As(err, &httpErr) {
		msg := httpErr.Title()
		if msg == "" {
			msg = httpErr.Message()
		}
		if msg == "" {
			msg = MsgProviderRegistrationFailed
		}
		return upstreamStatusError(httpErr.Status, msg, err)
	}
	return apperrors.NewBadGateway(MsgProviderRegistrationFailed, err)
}

// isoDate turns a YYYY-MM-DD date into midnight UTC in RFC 3339. Empty input
// yields nil.
func isoDate(value string) (*string, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, err
	}
	iso := t.UTC().Format("2006-01-02T15:04:05.000Z")
	return &iso, nil
}
