package models

// Constantes pour les rôles disponibles
const (
	RolePlayer     = "player"
	RoleOrganizer  = "organizer"
	RoleSuperAdmin = "super_admin"
)

// GetDefaultRoles retourne les rôles par défaut pour un nouvel utilisateur
func GetDefaultRoles() Roles {
	return Roles{RolePlayer}
}

// GetAllRoles retourne tous les rôles disponibles
func GetAllRoles() []string {
	return []string{
		RolePlayer,
		RoleOrganizer,
		RoleSuperAdmin,
	}
}

func IsValidRole(role string) bool {
	for _, r := range GetAllRoles() {
		if r == role {
			return true
		}
	}
	return false
}
