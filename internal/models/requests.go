package models

// Payloads for the REST gateway. Pointer fields in update requests mean
// "leave unchanged"; they marshal with omitempty so the server only sees
// the fields being patched.

type LoginRequest struct {
	PKToken string `json:"pk_token"`
}

type LoginResponse struct {
	User        User   `json:"user"`
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email,omitempty"`
}

type RegisterResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type SecurityLoginRequest struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	TOTPCode   string `json:"totp_code,omitempty"`
	BackupCode string `json:"backup_code,omitempty"`
}

type SecurityLoginResponse struct {
	AccessToken string `json:"access_token,omitempty"`
	TokenType   string `json:"token_type"`
	Requires2FA bool   `json:"requires_2fa"`
	UserID      *int   `json:"user_id,omitempty"`
	Message     string `json:"message,omitempty"`
}

type CreateMemberRequest struct {
	Name        string `json:"name"`
	Pronouns    string `json:"pronouns,omitempty"`
	Color       string `json:"color,omitempty"`
	AvatarPath  string `json:"avatar_path,omitempty"`
	Description string `json:"description,omitempty"`
	PKID        string `json:"pk_id,omitempty"`
	ProxyTags   string `json:"proxy_tags,omitempty"`
}

type UpdateMemberRequest struct {
	Name        *string `json:"name,omitempty"`
	Pronouns    *string `json:"pronouns,omitempty"`
	Color       *string `json:"color,omitempty"`
	AvatarPath  *string `json:"avatar_path,omitempty"`
	Description *string `json:"description,omitempty"`
	ProxyTags   *string `json:"proxy_tags,omitempty"`
}

type CreateChannelRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Color       string `json:"color,omitempty"`
	Emoji       string `json:"emoji,omitempty"`
}

type UpdateChannelRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Color       *string `json:"color,omitempty"`
	Emoji       *string `json:"emoji,omitempty"`
	IsArchived  *bool   `json:"is_archived,omitempty"`
	Position    *int    `json:"position,omitempty"`
}

type CreateMessageRequest struct {
	Content   string `json:"content"`
	MemberID  *int   `json:"member_id,omitempty"`
	ChannelID *int   `json:"channel_id,omitempty"`
}

type SyncResult struct {
	Success bool     `json:"success"`
	Added   int      `json:"added"`
	Updated int      `json:"updated"`
	Errors  []string `json:"errors,omitempty"`
	Message string   `json:"message,omitempty"`
}

type TOTPSetupResponse struct {
	Secret      string   `json:"secret"`
	QRCode      string   `json:"qr_code"`
	BackupCodes []string `json:"backup_codes"`
	Message     string   `json:"message"`
}

type TOTPStatusResponse struct {
	Enabled              bool `json:"enabled"`
	BackupCodesRemaining int  `json:"backup_codes_remaining"`
}

type BackupCodesResponse struct {
	Success     bool     `json:"success"`
	BackupCodes []string `json:"backup_codes"`
	Message     string   `json:"message"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type UpdateProfileRequest struct {
	Email      *string `json:"email,omitempty"`
	SystemName *string `json:"system_name,omitempty"`
	ThemeColor *string `json:"theme_color,omitempty"`
}

type StatusResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}
