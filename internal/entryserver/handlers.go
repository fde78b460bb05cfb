package entryserver

import (
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"

	"github.com/xolan/worklog/internal/entry"
)

//go:embed templates/*.html
var templateFS embed.FS

type pages struct {
	login *template.Template
	entry *template.Template
}

func loadPages() *pages {
	return &pages{
		login: template.Must(template.ParseFS(templateFS, "templates/login.html")),
		entry: template.Must(template.ParseFS(templateFS, "templates/entry.html")),
	}
}

type loginPage struct {
	Error string
}

type entryPage struct {
	Categories []string
	Other      string
	Saved      bool
	Error      string
	Content    string
}

// Handler returns the HTTP routes:
//
//	GET  /login    credential page
//	POST /login    check the shared secret, start a session
//	GET  /         entry page (requires a session)
//	POST /         record an entry (requires a session)
//	POST /logout   end the session
//	GET  /healthz  lifecycle state as JSON
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /login", s.handleLoginPage)
	mux.HandleFunc("POST /login", s.handleLogin)
	mux.HandleFunc("POST /logout", s.handleLogout)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /{$}", s.requireSession(s.handleEntryPage))
	mux.HandleFunc("POST /{$}", s.requireSession(s.handleSubmit))
	return mux
}

func (s *Server) sessionToken(r *http.Request) string {
	cookie, err := r.Cookie(SessionCookie)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// requireSession redirects requests without an authenticated session to /login.
func (s *Server) requireSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.sessions.Authenticated(s.sessionToken(r)) {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next(w, r)
	}
}

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if s.sessions.Authenticated(s.sessionToken(r)) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	s.render(w, http.StatusOK, s.pages.login, loginPage{})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		s.render(w, http.StatusBadRequest, s.pages.login, loginPage{Error: "请求无效"})
		return
	}

	if !s.checkSecret(r.PostFormValue("password")) {
		s.logger.Printf("entryserver: login rejected from %s", r.RemoteAddr)
		s.render(w, http.StatusUnauthorized, s.pages.login, loginPage{Error: "密码错误"})
		return
	}

	token, session, err := s.sessions.Create()
	if err != nil {
		s.logger.Printf("entryserver: create session: %v", err)
		http.Error(w, "session error", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  session.Expires,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	s.logger.Printf("entryserver: login from %s", r.RemoteAddr)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if token := s.sessionToken(r); token != "" {
		s.sessions.Delete(token)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (s *Server) handleEntryPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, s.pages.entry, s.entryPage(r.URL.Query().Get("saved") == "1", "", ""))
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		s.render(w, http.StatusBadRequest, s.pages.entry, s.entryPage(false, "请求无效", ""))
		return
	}

	rawContent := r.PostFormValue("content")
	category, content, err := entry.Validate(s.catalog, r.PostFormValue("category"), rawContent)
	if err != nil {
		var verr *entry.ValidationError
		message := "提交无效"
		if errors.As(err, &verr) && verr.Field == "content" {
			message = "请输入具体工作内容"
		} else if errors.As(err, &verr) {
			message = "请选择有效的工作类别"
		}
		s.render(w, http.StatusBadRequest, s.pages.entry, s.entryPage(false, message, rawContent))
		return
	}

	if err := s.store.Append(s.clock(), category, content); err != nil {
		s.logger.Printf("entryserver: append failed: %v", err)
		s.render(w, http.StatusInternalServerError, s.pages.entry, s.entryPage(false, "保存失败", rawContent))
		return
	}

	s.logger.Printf("entryserver: recorded %s", category)
	// Redirect so a reload does not submit twice.
	http.Redirect(w, r, "/?saved=1", http.StatusSeeOther)
}

type healthResponse struct {
	Status string `json:"status"`
	URL    string `json:"url,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(healthResponse{Status: s.State().String(), URL: s.URL()})
}

func (s *Server) entryPage(saved bool, message, content string) entryPage {
	return entryPage{
		Categories: s.catalog,
		Other:      entry.OtherCategory,
		Saved:      saved,
		Error:      message,
		Content:    content,
	}
}

func (s *Server) render(w http.ResponseWriter, status int, tmpl *template.Template, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := tmpl.Execute(w, data); err != nil {
		s.logger.Printf("entryserver: render %s: %v", tmpl.Name(), err)
	}
}
