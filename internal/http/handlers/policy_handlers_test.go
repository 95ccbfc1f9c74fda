package handlers

import (
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/shuke0908/quantauth/internal/mocks"
)

func createPolicyRouterForTest(t *testing.T, policySvc *mocks.MockPolicyService) *gin.Engine {
	t.Helper()

	gin.SetMode(gin.TestMode)
	h := &PolicyHandlers{PolicySvc: policySvc}
	r := gin.New()
	r.GET("/admin/policies", h.List)
	r.POST("/admin/policies", h.Add)
	r.DELETE("/admin/policies", h.Remove)
	return r
}

func TestPolicyHandlers_List(t *testing.T) {
	policySvc := mocks.NewMockPolicyService()
	policySvc.GetPoliciesFunc = func() [][]string {
		return [][]string{{"role_admin", "/admin/*", "(GET|POST)"}}
	}
	r := createPolicyRouterForTest(t, policySvc)

	w := performRequest(r, http.MethodGet, "/admin/policies", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if body := w.Body.String(); body != `[["role_admin","/admin/*","(GET|POST)"]]` {
		t.Errorf("unexpected body %s", body)
	}
}

func TestPolicyHandlers_Add(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		addError       error
		expectedStatus int
	}{
		{
			name:           "valid policy",
			body:           `{"sub":"role_admin","obj":"/admin/*","act":"GET"}`,
			expectedStatus: http.StatusNoContent,
		},
		{
			name:           "missing fields",
			body:           `{"sub":"role_admin"}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "enforcer failure",
			body:           `{"sub":"role_admin","obj":"/admin/*","act":"GET"}`,
			addError:       errors.New("adapter down"),
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			policySvc := mocks.NewMockPolicyService()
			policySvc.AddPolicyFunc = func(role, resource, action string) error {
				return tt.addError
			}
			r := createPolicyRouterForTest(t, policySvc)

			w := performRequest(r, http.MethodPost, "/admin/policies", tt.body, nil)
			if w.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d: %s", tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestPolicyHandlers_Remove(t *testing.T) {
	policySvc := mocks.NewMockPolicyService()
	var removed []string
	policySvc.RemovePolicyFunc = func(role, resource, action string) error {
		removed = append(removed, role)
		return nil
	}
	r := createPolicyRouterForTest(t, policySvc)

	w := performRequest(r, http.MethodDelete, "/admin/policies",
		`{"sub":"role_admin","obj":"/admin/*","act":"GET"}`, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	if len(removed) != 1 || removed[0] != "role_admin" {
		t.Errorf("expected role_admin removed, got %v", removed)
	}
}
