package articles

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/quillfeed/quillfeed/internal/shared"
	"github.com/quillfeed/quillfeed/internal/view"
)

// Handler wires the feed and the article lifecycle endpoints.
type Handler struct {
	logger      *slog.Logger
	service     *Service
	templates   *view.Engine
	csrfManager *shared.CSRFManager
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, templates *view.Engine, csrf *shared.CSRFManager) *Handler {
	return &Handler{logger: logger, service: service, templates: templates, csrfManager: csrf}
}

// MountRoutes registers article routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.showFeed)
	r.Get("/home", h.showFeed)
	r.Get("/posts/{id}", h.showByAuthor)
	r.Get("/read_post/{id}", h.showArticle)
	r.Group(func(r chi.Router) {
		r.Use(shared.RequireLogin)
		r.Get("/add_post", h.showCreate)
		r.Post("/add_post", h.handleCreate)
		r.Get("/edit_post/{id}", h.showEdit)
		r.Post("/edit_post/{id}", h.handleEdit)
		r.Post("/delete_post/{id}", h.handleDelete)
		r.Get("/my_posts", h.showMine)
	})
}

type articleForm struct {
	Title string
	Body  string
}

func (h *Handler) showFeed(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListRecent(r.Context())
	if err != nil {
		h.logger.Error("list recent articles", slog.Any("error", err))
		h.renderError(w, r, http.StatusInternalServerError, "Could not load the feed")
		return
	}
	h.render(w, r, "pages/home.html", "Home", map[string]any{"Posts": items}, http.StatusOK)
}

func (h *Handler) showArticle(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	article, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err, "load article")
		return
	}
	h.render(w, r, "pages/read_post.html", article.Title, map[string]any{"Post": article}, http.StatusOK)
}

func (h *Handler) showByAuthor(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if id == shared.CurrentUserID(r.Context()) {
		http.Redirect(w, r, "/my_posts", http.StatusSeeOther)
		return
	}
	author, err := h.service.GetAuthor(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err, "load author")
		return
	}
	posts, err := h.service.ListByOwner(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err, "list author articles")
		return
	}
	h.render(w, r, "pages/posts.html", "Posts by "+author.Username, map[string]any{
		"Author": author,
		"Posts":  posts,
	}, http.StatusOK)
}

func (h *Handler) showMine(w http.ResponseWriter, r *http.Request) {
	posts, err := h.service.ListByOwner(r.Context(), shared.CurrentUserID(r.Context()))
	if err != nil {
		h.respondError(w, r, err, "list own articles")
		return
	}
	h.render(w, r, "pages/my_posts.html", "My posts", map[string]any{"Posts": posts}, http.StatusOK)
}

func (h *Handler) showCreate(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "pages/add_post.html", "New post", map[string]any{
		"Form":   articleForm{},
		"Errors": shared.FieldErrors{},
	}, http.StatusOK)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	form := articleForm{Title: r.PostFormValue("title"), Body: r.PostFormValue("body")}

	_, err := h.service.Create(r.Context(), shared.CurrentUserID(r.Context()), form.Title, form.Body)
	if err != nil {
		if errs, ok := shared.AsFieldErrors(err); ok {
			h.render(w, r, "pages/add_post.html", "New post", map[string]any{
				"Form":   form,
				"Errors": errs,
			}, http.StatusBadRequest)
			return
		}
		h.respondError(w, r, err, "create article")
		return
	}
	h.redirectWithFlash(w, r, "/my_posts", "success", "Post published")
}

func (h *Handler) showEdit(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	article, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err, "load article for edit")
		return
	}
	if article.UserID != shared.CurrentUserID(r.Context()) {
		h.redirectWithFlash(w, r, "/my_posts", "danger", "You can only edit your own posts")
		return
	}
	h.render(w, r, "pages/edit_post.html", "Edit post", map[string]any{
		"PostID": id,
		"Form":   articleForm{Title: article.Title, Body: article.Body},
		"Errors": shared.FieldErrors{},
	}, http.StatusOK)
}

func (h *Handler) handleEdit(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	form := articleForm{Title: r.PostFormValue("title"), Body: r.PostFormValue("body")}

	err := h.service.Update(r.Context(), id, shared.CurrentUserID(r.Context()), form.Title, form.Body)
	switch {
	case err == nil:
		h.redirectWithFlash(w, r, "/my_posts", "success", "Post updated")
	case errors.Is(err, shared.ErrForbidden):
		h.redirectWithFlash(w, r, "/my_posts", "danger", "You can only edit your own posts")
	default:
		if errs, ok := shared.AsFieldErrors(err); ok {
			h.render(w, r, "pages/edit_post.html", "Edit post", map[string]any{
				"PostID": id,
				"Form":   form,
				"Errors": errs,
			}, http.StatusBadRequest)
			return
		}
		h.respondError(w, r, err, "update article")
	}
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	err := h.service.Delete(r.Context(), id, shared.CurrentUserID(r.Context()))
	switch {
	case err == nil:
		h.redirectWithFlash(w, r, "/my_posts", "success", "Post deleted")
	case errors.Is(err, shared.ErrForbidden), errors.Is(err, shared.ErrNotFound):
		h.redirectWithFlash(w, r, "/my_posts", "danger", "Cannot delete this post")
	default:
		h.respondError(w, r, err, "delete article")
	}
}

// pathID parses the {id} route parameter, rendering a 404 page on garbage.
func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		h.renderError(w, r, http.StatusNotFound, "No such post")
		return 0, false
	}
	return id, true
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error, action string) {
	if errors.Is(err, shared.ErrNotFound) {
		h.renderError(w, r, http.StatusNotFound, "No such post")
		return
	}
	h.logger.Error(action, slog.Any("error", err))
	h.renderError(w, r, http.StatusInternalServerError, "Something went wrong")
}

func (h *Handler) renderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	h.render(w, r, "pages/error.html", http.StatusText(status), map[string]any{
		"Status":  status,
		"Message": message,
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

func (h *Handler) redirectWithFlash(w http.ResponseWriter, r *http.Request, location, kind, message string) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.AddFlash(shared.FlashMessage{Kind: kind, Message: message})
	}
	http.Redirect(w, r, location, http.StatusSeeOther)
}

// ShowFeedForTest exposes the feed handler for tests.
func (h *Handler) ShowFeedForTest(w http.ResponseWriter, r *http.Request) {
	h.showFeed(w, r)
}

// ShowArticleForTest exposes the single-article handler for tests.
func (h *Handler) ShowArticleForTest(w http.ResponseWriter, r *http.Request) {
	h.showArticle(w, r)
}

// HandleCreateForTest exposes the create handler for tests.
func (h *Handler) HandleCreateForTest(w http.ResponseWriter, r *http.Request) {
	h.handleCreate(w, r)
}

// HandleDeleteForTest exposes the delete handler for tests.
func (h *Handler) HandleDeleteForTest(w http.ResponseWriter, r *http.Request) {
	h.handleDelete(w, r)
}
