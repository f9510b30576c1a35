package model

import "time"

type Profile struct {
	UserID          string  `json:"userId"`
	Points          int     `json:"points"`
	Level           int     `json:"level"`
	LevelName       string  `json:"levelName"`
	NextLevelPoints int     `json:"nextLevelPoints"`
	Progress        float64 `json:"progress"`
}

type Achievement struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Icon        string     `json:"icon"`
	Points      int        `json:"points"`
	Unlocked    bool       `json:"unlocked"`
	UnlockedAt  *time.Time `json:"unlockedAt,omitempty"`
}

type Customization struct {
	Avatar        string   `json:"avatar"`
	Frame         string   `json:"frame"`
	Theme         string   `json:"theme"`
	Title         string   `json:"title"`
	UnlockedItems []string `json:"unlockedItems"`
}

// CustomizationUpdate carries the fields a user may change. Empty fields are
// left untouched by the backend.
type CustomizationUpdate struct {
	Avatar string `json:"avatar,omitempty" validate:"omitempty,max=64"`
	Frame  string `json:"frame,omitempty" validate:"omitempty,max=64"`
	Theme  string `json:"theme,omitempty" validate:"omitempty,oneof=light dark system"`
	Title  string `json:"title,omitempty" validate:"omitempty,max=64"`
}
