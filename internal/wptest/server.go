// Package wptest runs an in-memory WordPress REST API for tests.  It implements just enough of
// wp/v2 to list and create content, look up and create terms, upload media and serve files, and
// it counts every request by method and path so tests can assert on what was (not) called.
package wptest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/toothbrush/wp-migrate/wordpress"
	"golang.org/x/exp/maps"
)

// Failure makes a route answer with Status and a WordPress-style error body.
type Failure struct {
	Status  int
	Message string
}

type Upload struct {
	ID          int
	Filename    string
	ContentType string
	Data        []byte
}

type Server struct {
	*httptest.Server

	Username string
	Password string

	mu      sync.Mutex
	nextID  int
	calls   map[string]int
	content map[wordpress.ContentType][]wordpress.ContentItem
	created map[wordpress.ContentType][]wordpress.CreateContentRequest
	terms   map[wordpress.TermKind]map[int]wordpress.Term
	uploads map[int]Upload
	assets  map[string][]byte

	// failure injection; all guarded by mu via the setters below
	rootFailure   *Failure
	pageFailures  map[int]Failure
	termFailure   *Failure
	createFailure map[string]Failure
	omitPageCount bool
}

func NewServer() *Server {
	s := &Server{
		Username:      "admin",
		Password:      "abcd efgh ijkl mnop",
		nextID:        1000,
		calls:         make(map[string]int),
		content:       make(map[wordpress.ContentType][]wordpress.ContentItem),
		created:       make(map[wordpress.ContentType][]wordpress.CreateContentRequest),
		terms:         make(map[wordpress.TermKind]map[int]wordpress.Term),
		uploads:       make(map[int]Upload),
		assets:        make(map[string][]byte),
		pageFailures:  make(map[int]Failure),
		createFailure: make(map[string]Failure),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serveHTTP))
	return s
}

// Connection returns a connection authenticated as the server's user.
func (s *Server) Connection(name string) wordpress.Connection {
	return wordpress.Connection{
		BaseURL:         s.URL,
		CredentialToken: wordpress.BasicToken(s.Username, s.Password),
		DisplayName:     name,
	}
}

// API is Connection wrapped in a *wordpress.API.
func (s *Server) API(name string) *wordpress.API {
	api, err := wordpress.NewAPI(s.Connection(name))
	if err != nil {
		panic(err)
	}
	return api
}

func (s *Server) AddContent(contentType wordpress.ContentType, items ...wordpress.ContentItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.content[contentType] = append(s.content[contentType], items...)
}

func (s *Server) AddAsset(path string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assets[path] = data
}

// AddTerm seeds a term and returns its ID.
func (s *Server) AddTerm(kind wordpress.TermKind, name, slug string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addTermLocked(kind, name, slug).ID
}

func (s *Server) FailRoot(f Failure) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rootFailure = &f
}

func (s *Server) FailPage(page int, f Failure) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pageFailures[page] = f
}

func (s *Server) FailTerms(f Failure) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.termFailure = &f
}

// FailCreate makes creating content titled title fail.  A zero Failure clears it again.
func (s *Server) FailCreate(title string, f Failure) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f.Status == 0 {
		delete(s.createFailure, title)
		return
	}
	s.createFailure[title] = f
}

// OmitPageCount drops the X-WP-TotalPages header from list responses.
func (s *Server) OmitPageCount() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.omitPageCount = true
}

// Calls counts requests, e.g. Calls("POST", "/wp-json/wp/v2/media").
func (s *Server) Calls(method, path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[method+" "+path]
}

func (s *Server) Created(contentType wordpress.ContentType) []wordpress.CreateContentRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]wordpress.CreateContentRequest(nil), s.created[contentType]...)
}

// Terms lists the terms of one taxonomy ordered by ID.
func (s *Server) Terms(kind wordpress.TermKind) []wordpress.Term {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sortedTermsLocked(kind)
}

func (s *Server) Uploads() []Upload {
	s.mu.Lock()
	defer s.mu.Unlock()
	uploads := maps.Values(s.uploads)
	sort.Slice(uploads, func(i, j int) bool { return uploads[i].ID < uploads[j].ID })
	return uploads
}

func (s *Server) serveHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.calls[r.Method+" "+r.URL.Path]++
	s.mu.Unlock()

	route := strings.TrimPrefix(r.URL.Path, "/wp-json/wp/v2/")
	switch {
	case r.URL.Path == "/wp-json/" || r.URL.Path == "/wp-json":
		s.serveRoot(w)
	case !strings.HasPrefix(r.URL.Path, "/wp-json/"):
		s.serveAsset(w, r)
	case route == "users/me":
		s.serveCurrentUser(w, r)
	case route == "posts" || route == "pages":
		s.serveContent(w, r, wordpress.ContentType(route))
	case route == "categories":
		s.serveTerms(w, r, wordpress.Category)
	case route == "tags":
		s.serveTerms(w, r, wordpress.Tag)
	case route == "media":
		s.serveMedia(w, r)
	default:
		writeError(w, http.StatusNotFound, "rest_no_route", "No route was found matching the URL and request method.")
	}
}

func (s *Server) serveRoot(w http.ResponseWriter) {
	s.mu.Lock()
	f := s.rootFailure
	s.mu.Unlock()
	if f != nil {
		writeFailure(w, *f)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"name":       "Test site",
		"namespaces": []string{"wp/v2"},
	})
}

func (s *Server) authorised(r *http.Request) bool {
	u, p, ok := r.BasicAuth()
	return ok && u == s.Username && p == s.Password
}

func (s *Server) serveCurrentUser(w http.ResponseWriter, r *http.Request) {
	if !s.authorised(r) {
		writeError(w, http.StatusUnauthorized, "rest_not_logged_in", "You are not currently logged in.")
		return
	}
	writeJSON(w, http.StatusOK, wordpress.User{ID: 1, Name: s.Username, Slug: s.Username})
}

func (s *Server) serveContent(w http.ResponseWriter, r *http.Request, contentType wordpress.ContentType) {
	switch r.Method {
	case http.MethodGet:
		s.listContent(w, r, contentType)
	case http.MethodPost:
		s.createContent(w, r, contentType)
	default:
		writeError(w, http.StatusMethodNotAllowed, "rest_no_route", "No route was found matching the URL and request method.")
	}
}

func (s *Server) listContent(w http.ResponseWriter, r *http.Request, contentType wordpress.ContentType) {
	q := r.URL.Query()
	page := atoiDefault(q.Get("page"), 1)
	perPage := atoiDefault(q.Get("per_page"), 10)

	s.mu.Lock()
	f, failing := s.pageFailures[page]
	all := append([]wordpress.ContentItem(nil), s.content[contentType]...)
	omit := s.omitPageCount
	s.mu.Unlock()

	if failing {
		writeFailure(w, f)
		return
	}

	totalPages := (len(all) + perPage - 1) / perPage
	if page > 1 && page > totalPages {
		writeError(w, http.StatusBadRequest, "rest_post_invalid_page_number", "The page number requested is larger than the number of pages available.")
		return
	}

	start := (page - 1) * perPage
	end := start + perPage
	if end > len(all) {
		end = len(all)
	}
	items := []wordpress.ContentItem{}
	if start < end {
		items = all[start:end]
	}

	w.Header().Set("X-WP-Total", strconv.Itoa(len(all)))
	if !omit {
		w.Header().Set("X-WP-TotalPages", strconv.Itoa(totalPages))
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) createContent(w http.ResponseWriter, r *http.Request, contentType wordpress.ContentType) {
	if !s.authorised(r) {
		writeError(w, http.StatusUnauthorized, "rest_cannot_create", "Sorry, you are not allowed to create posts as this user.")
		return
	}

	var payload wordpress.CreateContentRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "rest_invalid_json", err.Error())
		return
	}

	s.mu.Lock()
	f, failing := s.createFailure[payload.Title]
	if failing {
		s.mu.Unlock()
		writeFailure(w, f)
		return
	}
	s.created[contentType] = append(s.created[contentType], payload)
	id := s.newIDLocked()
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, wordpress.ContentItem{
		ID:            id,
		Title:         wordpress.Rendered{Rendered: payload.Title},
		Content:       wordpress.Rendered{Rendered: payload.Content},
		Status:        payload.Status,
		FeaturedMedia: payload.FeaturedMedia,
		Categories:    payload.Categories,
		Tags:          payload.Tags,
	})
}

func (s *Server) serveTerms(w http.ResponseWriter, r *http.Request, kind wordpress.TermKind) {
	s.mu.Lock()
	f := s.termFailure
	s.mu.Unlock()
	if f != nil {
		writeFailure(w, *f)
		return
	}

	switch r.Method {
	case http.MethodGet:
		slug := r.URL.Query().Get("slug")
		s.mu.Lock()
		matches := []wordpress.Term{}
		for _, t := range s.sortedTermsLocked(kind) {
			if slug == "" || t.Slug == slug {
				matches = append(matches, t)
			}
		}
		s.mu.Unlock()
		writeJSON(w, http.StatusOK, matches)

	case http.MethodPost:
		if !s.authorised(r) {
			writeError(w, http.StatusUnauthorized, "rest_cannot_create", "Sorry, you are not allowed to create terms in this taxonomy.")
			return
		}
		var body struct {
			Name string `json:"name"`
			Slug string `json:"slug"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "rest_invalid_json", err.Error())
			return
		}

		s.mu.Lock()
		for _, t := range s.terms[kind] {
			if t.Slug == body.Slug {
				s.mu.Unlock()
				writeError(w, http.StatusBadRequest, "term_exists", "A term with the name provided already exists in this taxonomy.")
				return
			}
		}
		term := s.addTermLocked(kind, body.Name, body.Slug)
		s.mu.Unlock()
		writeJSON(w, http.StatusCreated, term)

	default:
		writeError(w, http.StatusMethodNotAllowed, "rest_no_route", "No route was found matching the URL and request method.")
	}
}

func (s *Server) serveMedia(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "rest_no_route", "No route was found matching the URL and request method.")
		return
	}
	if !s.authorised(r) {
		writeError(w, http.StatusUnauthorized, "rest_cannot_create", "Sorry, you are not allowed to upload media as this user.")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "rest_upload_no_data", "No data supplied.")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "rest_upload_unknown_error", err.Error())
		return
	}

	s.mu.Lock()
	upload := Upload{
		ID:          s.newIDLocked(),
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}
	s.uploads[upload.ID] = upload
	s.assets["/wp-content/uploads/"+header.Filename] = data
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, wordpress.Media{
		ID:        upload.ID,
		MimeType:  upload.ContentType,
		SourceURL: s.URL + "/wp-content/uploads/" + header.Filename,
	})
}

func (s *Server) serveAsset(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	data, ok := s.assets[r.URL.Path]
	s.mu.Unlock()
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", http.DetectContentType(data))
	w.Write(data)
}

func (s *Server) addTermLocked(kind wordpress.TermKind, name, slug string) wordpress.Term {
	if s.terms[kind] == nil {
		s.terms[kind] = make(map[int]wordpress.Term)
	}
	term := wordpress.Term{
		ID:       s.newIDLocked(),
		Name:     name,
		Slug:     slug,
		Taxonomy: string(kind),
	}
	s.terms[kind][term.ID] = term
	return term
}

func (s *Server) sortedTermsLocked(kind wordpress.TermKind) []wordpress.Term {
	terms := maps.Values(s.terms[kind])
	sort.Slice(terms, func(i, j int) bool { return terms[i].ID < terms[j].ID })
	return terms
}

func (s *Server) newIDLocked() int {
	s.nextID++
	return s.nextID
}

func atoiDefault(v string, def int) int {
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return def
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeFailure(w http.ResponseWriter, f Failure) {
	if f.Message == "" {
		w.WriteHeader(f.Status)
		fmt.Fprint(w, "<html><body>oops</body></html>")
		return
	}
	writeError(w, f.Status, "wptest_failure", f.Message)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]any{
		"code":    code,
		"message": message,
		"data":    map[string]int{"status": status},
	})
}
