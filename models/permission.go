package models

// Permission represents a single permission action
type Permission string

const (
	// Review permissions
	PermissionWriteReview Permission = "write:review"

	// Cache permissions
	PermissionFlushCache Permission = "flush:cache"
)

// RolePermissions maps roles to their permissions
var RolePermissions = map[string][]Permission{
	"admin": {
		PermissionWriteReview, // post reviews
		PermissionFlushCache,  // drop cached catalog responses
	},
	"customer": {
		PermissionWriteReview,
	},
}
