package model

import (
	"net/url"
	"time"
)

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleFarmer Role = "farmer"
	RoleBuyer  Role = "buyer"
)

// 登録できるロールか
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleFarmer, RoleBuyer:
		return true
	default:
		return false
	}
}

// ユーザー。emailは小文字に正規化して保存する。
// 件数系（totalProductsなど）は持たず、集計で出す。
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	Role         Role      `json:"role"`
	Avatar       string    `json:"avatar"`
	Phone        string    `json:"phone,omitempty"`
	Location     string    `json:"location,omitempty"`
	JoinedDate   time.Time `json:"joined_date"`
}

// アバターURLは名前から作る
func AvatarURL(name string) string {
	return "https://api.dicebear.com/7.x/avataaars/svg?seed=" + url.QueryEscape(name)
}

// 認証情報を含まないプロフィール
type PublicProfile struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Role       Role      `json:"role"`
	Avatar     string    `json:"avatar"`
	Phone      string    `json:"phone,omitempty"`
	Location   string    `json:"location,omitempty"`
	JoinedDate time.Time `json:"joined_date"`
}

func (u User) Profile() PublicProfile {
	return PublicProfile{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		Role:       u.Role,
		Avatar:     u.Avatar,
		Phone:      u.Phone,
		Location:   u.Location,
		JoinedDate: u.JoinedDate,
	}
}
