package web

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"clubhouse/internal/adapters/http/middleware"
	"clubhouse/internal/application/projections"
	classDomain "clubhouse/internal/domain/class"
	clubDomain "clubhouse/internal/domain/club"
)

// clubView is the staff-facing JSON shape of a club.
type clubView struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Slug         string `json:"slug"`
	ContactEmail string `json:"contactEmail"`
	CreatedAt    string `json:"createdAt"`
}

func toClubView(c clubDomain.Club) clubView {
	return clubView{
		ID:           c.ID,
		Name:         c.Name,
		Slug:         c.Slug,
		ContactEmail: c.ContactEmail,
		CreatedAt:    c.CreatedAt.Format(time.RFC3339),
	}
}

// classView is the staff-facing JSON shape of a class.
type classView struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Day       string `json:"day"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Capacity  int    `json:"capacity"`
	Coach     string `json:"coach"`
}

func toClassView(c classDomain.Class) classView {
	return classView{
		ID:        c.ID,
		Name:      c.Name,
		Day:       c.Day,
		StartTime: c.StartTime,
		EndTime:   c.EndTime,
		Capacity:  c.Capacity,
		Coach:     c.Coach,
	}
}

// staffClub resolves the authenticated staff subject to its club. The gate
// guarantees a subject is present on these routes; a subject without a
// club gets 403.
func staffClub(w http.ResponseWriter, r *http.Request) (clubDomain.Club, bool) {
	subject, ok := middleware.StaffSubjectFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return clubDomain.Club{}, false
	}
	c, err := stores.ClubStore.GetByOwnerSubject(r.Context(), subject)
	if errors.Is(err, sql.ErrNoRows) {
		metricsCollector.RecordAuth("staff", "forbidden")
		writeError(w, http.StatusForbidden, "no club for this account")
		return clubDomain.Club{}, false
	}
	if err != nil {
		internalError(w, err)
		return clubDomain.Club{}, false
	}
	return c, true
}

// classForStaff loads the class named in the path and re-checks tenant
// ownership against the resolved record, never against request input. A
// class that exists under another club is forbidden, not absent: the two
// outcomes stay distinguishable in logs and metrics.
func classForStaff(w http.ResponseWriter, r *http.Request, c clubDomain.Club) (classDomain.Class, bool) {
	id := r.PathValue("id")
	cls, err := stores.ClassStore.GetByID(r.Context(), id)
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, "class not found")
		return classDomain.Class{}, false
	}
	if err != nil {
		internalError(w, err)
		return classDomain.Class{}, false
	}
	if cls.ClubID != c.ID {
		metricsCollector.RecordAuth("staff", "forbidden")
		writeError(w, http.StatusForbidden, "forbidden")
		return classDomain.Class{}, false
	}
	return cls, true
}

// handleAuthState reports whether the caller holds a valid staff session.
// Reaching this handler at all means the gate accepted the request, so the
// body is constant; an expired session never gets here.
func handleAuthState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"authenticated": true})
}

func handleGetDashboard(w http.ResponseWriter, r *http.Request) {
	c, ok := staffClub(w, r)
	if !ok {
		return
	}
	dash, err := projections.QueryDashboard(r.Context(), c.ID, projections.DashboardDeps{
		MemberStore:       stores.MemberStore,
		ClassStore:        stores.ClassStore,
		SubscriptionStore: stores.SubscriptionStore,
		AttendanceStore:   stores.AttendanceStore,
	})
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dash)
}

func handleGetClub(w http.ResponseWriter, r *http.Request) {
	c, ok := staffClub(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toClubView(c))
}

func handleUpdateClub(w http.ResponseWriter, r *http.Request) {
	c, ok := staffClub(w, r)
	if !ok {
		return
	}

	var req struct {
		Name         *string `json:"name"`
		ContactEmail *string `json:"contactEmail"`
	}
	if err := strictDecode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name != nil {
		c.Name = *req.Name
	}
	if req.ContactEmail != nil {
		c.ContactEmail = *req.ContactEmail
	}
	if err := c.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := stores.ClubStore.Save(r.Context(), c); err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toClubView(c))
}

func handleListClasses(w http.ResponseWriter, r *http.Request) {
	c, ok := staffClub(w, r)
	if !ok {
		return
	}
	classes, err := stores.ClassStore.ListByClubID(r.Context(), c.ID)
	if err != nil {
		internalError(w, err)
		return
	}
	views := make([]classView, 0, len(classes))
	for _, cls := range classes {
		views = append(views, toClassView(cls))
	}
	writeJSON(w, http.StatusOK, views)
}

func handleCreateClass(w http.ResponseWriter, r *http.Request) {
	c, ok := staffClub(w, r)
	if !ok {
		return
	}

	var req struct {
		Name      string `json:"name"`
		Day       string `json:"day"`
		StartTime string `json:"startTime"`
		EndTime   string `json:"endTime"`
		Capacity  int    `json:"capacity"`
		Coach     string `json:"coach"`
	}
	if err := strictDecode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// ClubID comes from the authenticated subject, never from the body.
	cls := classDomain.Class{
		ID:        generateID(),
		ClubID:    c.ID,
		Name:      req.Name,
		Day:       req.Day,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Capacity:  req.Capacity,
		Coach:     req.Coach,
	}
	if err := cls.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := stores.ClassStore.Save(r.Context(), cls); err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toClassView(cls))
}

func handleGetClass(w http.ResponseWriter, r *http.Request) {
	c, ok := staffClub(w, r)
	if !ok {
		return
	}
	cls, ok := classForStaff(w, r, c)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toClassView(cls))
}

func handleUpdateClass(w http.ResponseWriter, r *http.Request) {
	c, ok := staffClub(w, r)
	if !ok {
		return
	}
	cls, ok := classForStaff(w, r, c)
	if !ok {
		return
	}

	var req struct {
		Name      *string `json:"name"`
		Day       *string `json:"day"`
		StartTime *string `json:"startTime"`
		EndTime   *string `json:"endTime"`
		Capacity  *int    `json:"capacity"`
		Coach     *string `json:"coach"`
	}
	if err := strictDecode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name != nil {
		cls.Name = *req.Name
	}
	if req.Day != nil {
		cls.Day = *req.Day
	}
	if req.StartTime != nil {
		cls.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		cls.EndTime = *req.EndTime
	}
	if req.Capacity != nil {
		cls.Capacity = *req.Capacity
	}
	if req.Coach != nil {
		cls.Coach = *req.Coach
	}
	if err := cls.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := stores.ClassStore.Save(r.Context(), cls); err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toClassView(cls))
}

func handleDeleteClass(w http.ResponseWriter, r *http.Request) {
	c, ok := staffClub(w, r)
	if !ok {
		return
	}
	cls, ok := classForStaff(w, r, c)
	if !ok {
		return
	}
	if err := stores.ClassStore.Delete(r.Context(), cls.ID); err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
