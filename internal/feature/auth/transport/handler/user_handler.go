package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"opinion_backend/internal/feature/auth/domain/entity"
	"opinion_backend/internal/feature/auth/transport/http/dto"
	"opinion_backend/internal/feature/auth/usecase"
	jwtmw "opinion_backend/internal/platform/jwt"
)

// maxAvatarSize はアップロード可能な画像の最大サイズ（5MB）です。
const maxAvatarSize = 5 << 20

var avatarExtensions = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true}

// ProfileUsecase はプロフィール操作のユースケースを定義します。
type ProfileUsecase interface {
	GetProfile(ctx context.Context, accountID uint) (usecase.AccountView, error)
	UpdateProfile(ctx context.Context, accountID uint, in usecase.UpdateProfileInput) (usecase.Result[usecase.AccountView], error)
	SetActive(ctx context.Context, accountID uint, active bool) (usecase.AccountView, error)
}

// RoleUsecase はロール管理のユースケースを定義します。
type RoleUsecase interface {
	AssignRole(ctx context.Context, accountID uint, roleName string) (usecase.AccountView, error)
	RoleNames(ctx context.Context, accountID uint) ([]entity.RoleName, error)
	AccountsByRole(ctx context.Context, roleName string) ([]usecase.AccountView, error)
}

// UserHandler はプロフィールと管理者向けユーザー操作を処理します。
type UserHandler struct {
	profiles  ProfileUsecase
	roles     RoleUsecase
	avatars   dto.AvatarResolver
	uploadDir string
}

// NewUserHandler はUserHandlerの新しいインスタンスを生成します。
// uploadDir はmultipartで受け取った画像の一時保存先です。
func NewUserHandler(profiles ProfileUsecase, roles RoleUsecase, avatars dto.AvatarResolver, uploadDir string) *UserHandler {
	return &UserHandler{profiles: profiles, roles: roles, avatars: avatars, uploadDir: uploadDir}
}

// Me は認証済みアカウント自身のプロフィールを返します。
func (h *UserHandler) Me(c *gin.Context) {
	id, ok := jwtmw.AccountIDFrom(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorRes{Error: "unauthorized"})
		return
	}
	view, err := h.profiles.GetProfile(c.Request.Context(), id)
	if err != nil {
		writeError(c, "get_profile", err)
		return
	}
	c.JSON(http.StatusOK, dto.ProfileRes{Account: h.avatars.Account(view)})
}

// ProfileByID は管理者が任意のアカウントのプロフィールを取得します。
func (h *UserHandler) ProfileByID(c *gin.Context) {
	var req dto.ProfileByIDReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "get_profile", err)
		return
	}
	view, err := h.profiles.GetProfile(c.Request.Context(), req.UserID)
	if err != nil {
		writeError(c, "get_profile", err)
		return
	}
	c.JSON(http.StatusOK, dto.ProfileRes{Account: h.avatars.Account(view)})
}

// UpdateMe は自身のプロフィールを部分更新します。
// JSON または multipart/form-data（avatar ファイル付き）を受け付けます。
func (h *UserHandler) UpdateMe(c *gin.Context) {
	id, ok := jwtmw.AccountIDFrom(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorRes{Error: "unauthorized"})
		return
	}

	var req dto.UpdateProfileReq
	avatarPath := ""
	if c.ContentType() == binding.MIMEMultipartPOSTForm {
		if err := c.ShouldBindWith(&req, binding.FormMultipart); err != nil {
			badRequest(c, "update_profile", err)
			return
		}
		file, err := c.FormFile("avatar")
		switch {
		case errors.Is(err, http.ErrMissingFile):
		case err != nil:
			badRequest(c, "update_profile", err)
			return
		default:
			avatarPath, err = h.saveAvatar(c, file)
			if err != nil {
				badRequest(c, "update_profile", err)
				return
			}
		}
	} else if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "update_profile", err)
		return
	}

	res, err := h.profiles.UpdateProfile(c.Request.Context(), id, usecase.UpdateProfileInput{
		Name:            req.Name,
		Surname:         req.Surname,
		Username:        req.Username,
		Phone:           req.Phone,
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
		AvatarPath:      avatarPath,
	})
	if avatarPath != "" {
		// 保存に成功した場合はストア側で移動済み
		_ = os.Remove(avatarPath)
	}
	if err != nil {
		writeError(c, "update_profile", err)
		return
	}
	slog.Info("profile updated", "account_id", id, "remote_addr", c.ClientIP())
	c.JSON(http.StatusOK, dto.ProfileRes{
		Account:  h.avatars.Account(res.Value),
		Warnings: dto.NewWarnings(res.Warnings),
	})
}

// saveAvatar はアップロード画像を一時ファイルに保存します。
func (h *UserHandler) saveAvatar(c *gin.Context, file *multipart.FileHeader) (string, error) {
	if file.Size > maxAvatarSize {
		return "", fmt.Errorf("avatar exceeds %d bytes", maxAvatarSize)
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !avatarExtensions[ext] {
		return "", fmt.Errorf("unsupported avatar type %q", ext)
	}
	tmp, err := os.CreateTemp(h.uploadDir, "avatar-*"+ext)
	if err != nil {
		return "", err
	}
	path := tmp.Name()
	if err := tmp.Close(); err != nil {
		return "", err
	}
	if err := c.SaveUploadedFile(file, path); err != nil {
		_ = os.Remove(path)
		return "", err
	}
	return path, nil
}

// RoleNames はアカウントのロール名一覧を返します。
func (h *UserHandler) RoleNames(c *gin.Context) {
	id, ok := userIDParam(c)
	if !ok {
		return
	}
	names, err := h.roles.RoleNames(c.Request.Context(), id)
	if err != nil {
		writeError(c, "role_names", err)
		return
	}
	roles := make([]string, 0, len(names))
	for _, n := range names {
		roles = append(roles, n.String())
	}
	c.JSON(http.StatusOK, dto.RolesRes{UserID: id, Roles: roles})
}

// AssignRole はアカウントのロールを置き換えます（管理者専用）。
func (h *UserHandler) AssignRole(c *gin.Context) {
	id, ok := userIDParam(c)
	if !ok {
		return
	}
	var req dto.AssignRoleReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "assign_role", err)
		return
	}
	view, err := h.roles.AssignRole(c.Request.Context(), id, req.RoleName)
	if err != nil {
		writeError(c, "assign_role", err)
		return
	}
	c.JSON(http.StatusOK, dto.ProfileRes{Account: h.avatars.Account(view)})
}

// AccountsByRole はロールを持つアカウントを列挙します（管理者専用）。
func (h *UserHandler) AccountsByRole(c *gin.Context) {
	roleName := c.Param("roleName")
	views, err := h.roles.AccountsByRole(c.Request.Context(), roleName)
	if err != nil {
		writeError(c, "accounts_by_role", err)
		return
	}
	role, _ := entity.ParseRole(roleName)
	c.JSON(http.StatusOK, dto.AccountListRes{
		Role:  role.String(),
		Total: len(views),
		Users: h.avatars.Accounts(views),
	})
}

// SetActive はアカウントを無効化・再有効化します（管理者専用）。
func (h *UserHandler) SetActive(c *gin.Context) {
	id, ok := userIDParam(c)
	if !ok {
		return
	}
	var req dto.SetActiveReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "set_active", err)
		return
	}
	view, err := h.profiles.SetActive(c.Request.Context(), id, *req.Active)
	if err != nil {
		writeError(c, "set_active", err)
		return
	}
	c.JSON(http.StatusOK, dto.ProfileRes{Account: h.avatars.Account(view)})
}

func userIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("userId"), 10, 64)
	if err != nil || id == 0 {
		badRequest(c, "user_id", errors.New("userId must be a positive integer"))
		return 0, false
	}
	return uint(id), true
}
