package handlers

import (
	"net/http"

	"github.com/certhub/examdesk/internal/services"
)

type customerRequest struct {
	Kind    string `json:"kind"`
	HoTen   string `json:"ho_ten"`
	OrgName string `json:"org_name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
}

func (req customerRequest) input() services.CustomerInput {
	return services.CustomerInput{
		Kind:    req.Kind,
		HoTen:   req.HoTen,
		OrgName: req.OrgName,
		Phone:   req.Phone,
		Email:   req.Email,
		Address: req.Address,
	}
}

// GET /admin/customers?q=
func (e *Env) ListCustomers(w http.ResponseWriter, r *http.Request) {
	list, err := e.Svc.ListCustomers(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		e.fail(w, r, "list_customers", err)
		return
	}
	ok(w, "", list)
}

// POST /admin/customers
func (e *Env) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req customerRequest
	if err := decode(r, &req); err != nil {
		e.fail(w, r, "create_customer", err)
		return
	}
	c, err := e.Svc.CreateCustomer(r.Context(), req.input())
	if err != nil {
		e.fail(w, r, "create_customer", err)
		return
	}
	e.notice(r, "create_customer", "Khách hàng %s đã được tạo.", c.DisplayName())
	created(w, "Đã tạo khách hàng.", c)
}

// GET /admin/customers/{id}
func (e *Env) ShowCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		e.fail(w, r, "show_customer", err)
		return
	}
	c, err := e.Svc.GetCustomer(r.Context(), id)
	if err != nil {
		e.fail(w, r, "show_customer", err)
		return
	}
	ok(w, "", c)
}

// POST /admin/customers/{id}
func (e *Env) UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		e.fail(w, r, "update_customer", err)
		return
	}
	var req customerRequest
	if err := decode(r, &req); err != nil {
		e.fail(w, r, "update_customer", err)
		return
	}
	c, err := e.Svc.UpdateCustomer(r.Context(), id, req.input())
	if err != nil {
		e.fail(w, r, "update_customer", err)
		return
	}
	e.notice(r, "update_customer", "Khách hàng %s đã được cập nhật.", c.DisplayName())
	ok(w, "Đã lưu khách hàng.", c)
}

// POST /admin/customers/{id}/delete
func (e *Env) DeleteCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err == nil {
		err = e.Svc.DeleteCustomer(r.Context(), id)
	}
	if err != nil {
		e.fail(w, r, "delete_customer", err)
		return
	}
	e.notice(r, "delete_customer", "Khách hàng #%d đã bị xoá.", id)
	ok(w, "Đã xoá khách hàng và toàn bộ dữ liệu liên quan.", nil)
}

type candidateRequest struct {
	FullName   string `json:"full_name"`
	BirthDate  string `json:"birth_date"` // YYYY-MM-DD
	IdentityNo string `json:"identity_no"`
	Phone      string `json:"phone"`
	Email      string `json:"email"`
}

// GET /admin/customers/{id}/candidates
func (e *Env) ListCandidates(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		e.fail(w, r, "list_candidates", err)
		return
	}
	list, err := e.Svc.ListCandidates(r.Context(), id)
	if err != nil {
		e.fail(w, r, "list_candidates", err)
		return
	}
	ok(w, "", list)
}

// POST /admin/customers/{id}/candidates
func (e *Env) AddCandidate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		e.fail(w, r, "add_candidate", err)
		return
	}
	var req candidateRequest
	if err := decode(r, &req); err != nil {
		e.fail(w, r, "add_candidate", err)
		return
	}
	c, err := e.Svc.AddCandidate(r.Context(), id, services.CandidateInput{
		FullName:   req.FullName,
		BirthDate:  req.BirthDate,
		IdentityNo: req.IdentityNo,
		Phone:      req.Phone,
		Email:      req.Email,
	})
	if err != nil {
		e.fail(w, r, "add_candidate", err)
		return
	}
	e.notice(r, "add_candidate", "Thí sinh %s đã được thêm cho khách hàng #%d.", c.FullName, id)
	created(w, "Đã thêm thí sinh.", c)
}
