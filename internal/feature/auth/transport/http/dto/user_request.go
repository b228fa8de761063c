package dto

// UpdateProfileReq は部分更新です。省略されたフィールドは変更しません。
// JSONとmultipart/form-dataの両方を受け付けます（avatarはファイルパート）。
type UpdateProfileReq struct {
	Name            *string `json:"name" form:"name"`
	Surname         *string `json:"surname" form:"surname"`
	Username        *string `json:"username" form:"username"`
	Phone           *string `json:"phone" form:"phone"`
	CurrentPassword string  `json:"currentPassword" form:"currentPassword"`
	NewPassword     string  `json:"newPassword" form:"newPassword"`
}

// AssignRoleReq is the body of PUT /users/:userId/role.
type AssignRoleReq struct {
	RoleName string `json:"roleName" binding:"required"`
}

// SetActiveReq is the body of PUT /users/:userId/active.
// A pointer so that an explicit false passes the required check.
type SetActiveReq struct {
	Active *bool `json:"active" binding:"required"`
}

// ProfileByIDReq is the body of the admin profile lookup.
type ProfileByIDReq struct {
	UserID uint `json:"userId" binding:"required"`
}
