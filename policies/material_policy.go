package policies

import "github.com/Emilio-Bravo/polieduca/models"

// CanMutateMaterial decide si un usuario puede actualizar o eliminar un
// material: solo el dueño o un administrador. El rol teacher no da permiso
// sobre material ajeno. Aplica igual para update y delete.
func CanMutateMaterial(user models.User, material models.Material) bool {
	return user.ID == material.UserID || user.Role == models.RoleAdmin
}

// CanDeleteUser: un admin puede borrar a cualquiera; un usuario solo a sí mismo.
func CanDeleteUser(actor models.User, target models.User) bool {
	return actor.Role == models.RoleAdmin || actor.ID == target.ID
}
