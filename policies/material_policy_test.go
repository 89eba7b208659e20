package policies

import (
	"testing"

	"github.com/google/uuid"

	"github.com/Emilio-Bravo/polieduca/models"
)

func TestCanMutateMaterial(t *testing.T) {
	ownerID := uuid.New()
	otherID := uuid.New()
	material := models.Material{ID: uuid.New(), UserID: ownerID}

	cases := []struct {
		name string
		user models.User
		want bool
	}{
		{"dueño con rol user", models.User{ID: ownerID, Role: models.RoleUser}, true},
		{"dueño con rol teacher", models.User{ID: ownerID, Role: models.RoleTeacher}, true},
		{"otro usuario", models.User{ID: otherID, Role: models.RoleUser}, false},
		// teacher no da permiso sobre material ajeno
		{"otro teacher", models.User{ID: otherID, Role: models.RoleTeacher}, false},
		{"admin no dueño", models.User{ID: otherID, Role: models.RoleAdmin}, true},
	}

	for _, tc := range cases {
		if got := CanMutateMaterial(tc.user, material); got != tc.want {
			t.Errorf("%s: CanMutateMaterial = %v, se esperaba %v", tc.name, got, tc.want)
		}
	}
}

func TestCanDeleteUser(t *testing.T) {
	anaID := uuid.New()
	betoID := uuid.New()

	cases := []struct {
		name   string
		actor  models.User
		target models.User
		want   bool
	}{
		{"uno mismo", models.User{ID: anaID, Role: models.RoleUser}, models.User{ID: anaID}, true},
		{"otro usuario", models.User{ID: anaID, Role: models.RoleUser}, models.User{ID: betoID}, false},
		{"teacher sobre otro", models.User{ID: anaID, Role: models.RoleTeacher}, models.User{ID: betoID}, false},
		{"admin sobre cualquiera", models.User{ID: anaID, Role: models.RoleAdmin}, models.User{ID: betoID}, true},
	}

	for _, tc := range cases {
		if got := CanDeleteUser(tc.actor, tc.target); got != tc.want {
			t.Errorf("%s: CanDeleteUser = %v, se esperaba %v", tc.name, got, tc.want)
		}
	}
}
