package profiles

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/quillfeed/quillfeed/internal/auth"
	"github.com/quillfeed/quillfeed/internal/shared"
	"github.com/quillfeed/quillfeed/internal/view"
)

// Handler wires profile and about-page endpoints.
type Handler struct {
	logger      *slog.Logger
	service     *Service
	templates   *view.Engine
	csrfManager *shared.CSRFManager
	printer     *message.Printer
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, templates *view.Engine, csrf *shared.CSRFManager) *Handler {
	return &Handler{
		logger:      logger,
		service:     service,
		templates:   templates,
		csrfManager: csrf,
		printer:     message.NewPrinter(language.English),
	}
}

// MountRoutes registers profile routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/about", h.showAbout)
	r.Group(func(r chi.Router) {
		r.Use(shared.RequireLogin)
		r.Get("/profile/{id}", h.showProfile)
		r.Get("/edit_profile", h.showEditProfile)
		r.Post("/edit_profile", h.handleEditProfile)
	})
}

type profileForm struct {
	FirstName string
	LastName  string
	Username  string
	Email     string
	Instagram string
	X         string
	Facebook  string
	GitHub    string
}

func (h *Handler) showAbout(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.SiteStats(r.Context())
	if err != nil {
		h.logger.Error("site stats", slog.Any("error", err))
		h.renderError(w, r, http.StatusInternalServerError, "Something went wrong")
		return
	}
	h.render(w, r, "pages/about.html", "About", map[string]any{
		"UserCount":    h.printer.Sprintf("%d", stats.Users),
		"ArticleCount": h.printer.Sprintf("%d", stats.Articles),
	}, http.StatusOK)
}

func (h *Handler) showProfile(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		h.renderError(w, r, http.StatusNotFound, "No such user")
		return
	}
	profile, articleCount, err := h.service.GetProfile(r.Context(), id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			h.renderError(w, r, http.StatusNotFound, "No such user")
			return
		}
		h.logger.Error("load profile", slog.Any("error", err))
		h.renderError(w, r, http.StatusInternalServerError, "Something went wrong")
		return
	}
	h.render(w, r, "pages/profile.html", profile.Username, map[string]any{
		"User":         profile,
		"ArticleCount": articleCount,
		"IsSelf":       id == shared.CurrentUserID(r.Context()),
	}, http.StatusOK)
}

func (h *Handler) showEditProfile(w http.ResponseWriter, r *http.Request) {
	actorID := shared.CurrentUserID(r.Context())
	profile, _, err := h.service.GetProfile(r.Context(), actorID)
	if err != nil {
		h.logger.Error("load own profile", slog.Any("error", err))
		h.renderError(w, r, http.StatusInternalServerError, "Something went wrong")
		return
	}
	h.render(w, r, "pages/edit_profile.html", "Edit profile", map[string]any{
		"Form": profileForm{
			FirstName: profile.FirstName,
			LastName:  profile.LastName,
			Username:  profile.Username,
			Email:     profile.Email,
			Instagram: profile.Instagram,
			X:         profile.X,
			Facebook:  profile.Facebook,
			GitHub:    profile.GitHub,
		},
		"Errors": shared.FieldErrors{},
	}, http.StatusOK)
}

func (h *Handler) handleEditProfile(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	form := profileForm{
		FirstName: r.PostFormValue("first_name"),
		LastName:  r.PostFormValue("last_name"),
		Username:  r.PostFormValue("username"),
		Email:     r.PostFormValue("email"),
		Instagram: r.PostFormValue("instagram"),
		X:         r.PostFormValue("x"),
		Facebook:  r.PostFormValue("facebook"),
		GitHub:    r.PostFormValue("github"),
	}
	actorID := shared.CurrentUserID(r.Context())

	err := h.service.UpdateProfile(r.Context(), actorID, ProfileUpdate(form))
	if err == nil {
		h.redirectWithFlash(w, r, fmt.Sprintf("/profile/%d", actorID), "success", "Profile updated")
		return
	}

	errs := shared.FieldErrors{}
	switch {
	case errors.Is(err, auth.ErrUsernameTaken):
		errs["username"] = fmt.Sprintf("Username %q is already taken", form.Username)
	case errors.Is(err, auth.ErrEmailTaken):
		errs["email"] = fmt.Sprintf("Email %q is already registered", form.Email)
	default:
		if fieldErrs, ok := shared.AsFieldErrors(err); ok {
			errs = fieldErrs
		} else {
			h.logger.Error("update profile", slog.Any("error", err))
			errs["general"] = "Something went wrong, please try again"
		}
	}
	h.render(w, r, "pages/edit_profile.html", "Edit profile", map[string]any{
		"Form":   form,
		"Errors": errs,
	}, http.StatusBadRequest)
}

func (h *Handler) renderError(w http.ResponseWriter, r *http.Request, status int, messageText string) {
	h.render(w, r, "pages/error.html", http.StatusText(status), map[string]any{
		"Status":  status,
		"Message": messageText,
	}, status)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, template, title string, data map[string]any, status int) {
	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := h.csrfManager.EnsureToken(r.Context(), sess)
	var flash *shared.FlashMessage
	if sess != nil {
		flash = sess.PopFlash()
	}
	viewData := view.TemplateData{
		Title:         title,
		CSRFToken:     csrfToken,
		Flash:         flash,
		CurrentPath:   r.URL.Path,
		CurrentUserID: sess.UserID(),
		Data:          data,
	}
	w.WriteHeader(status)
	if err := h.templates.Render(w, template, viewData); err != nil {
		h.logger.Error("render template", slog.String("template", template), slog.Any("error", err))
	}
}

func (h *Handler) redirectWithFlash(w http.ResponseWriter, r *http.Request, location, kind, messageText string) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.AddFlash(shared.FlashMessage{Kind: kind, Message: messageText})
	}
	http.Redirect(w, r, location, http.StatusSeeOther)
}

// ShowAboutForTest exposes the about page handler for tests.
func (h *Handler) ShowAboutForTest(w http.ResponseWriter, r *http.Request) {
	h.showAbout(w, r)
}

// ShowProfileForTest exposes the profile page handler for tests.
func (h *Handler) ShowProfileForTest(w http.ResponseWriter, r *http.Request) {
	h.showProfile(w, r)
}

// HandleEditProfileForTest exposes the POST handler for tests.
func (h *Handler) HandleEditProfileForTest(w http.ResponseWriter, r *http.Request) {
	h.handleEditProfile(w, r)
}
