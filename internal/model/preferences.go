package model

import (
	"strings"
	"time"

	"gorm.io/datatypes"
)

// Preferences 用户偏好（每个用户至多一条）
// 五类偏好均为字符串列表，顺序无关

type Preferences struct {
	ID         uint                        `gorm:"primaryKey"`
	UserID     uint                        `gorm:"not null;uniqueIndex;comment:用户ID"`
	Dietary    datatypes.JSONSlice[string] `gorm:"comment:饮食限制"`
	Allergies  datatypes.JSONSlice[string] `gorm:"comment:过敏原"`
	Cuisines   datatypes.JSONSlice[string] `gorm:"comment:喜欢的菜系"`
	Music      datatypes.JSONSlice[string] `gorm:"comment:音乐偏好"`
	Activities datatypes.JSONSlice[string] `gorm:"comment:喜欢的活动"`
	CreatedAt  time.Time                   `gorm:"comment:创建时间"`
	UpdatedAt  time.Time                   `gorm:"comment:更新时间"`
}

func (Preferences) TableName() string { return "preferences" }

// EmptyPreferences 用户未设置偏好时的默认值
func EmptyPreferences(userID uint) *Preferences {
	return &Preferences{
		UserID:     userID,
		Dietary:    datatypes.JSONSlice[string]{},
		Allergies:  datatypes.JSONSlice[string]{},
		Cuisines:   datatypes.JSONSlice[string]{},
		Music:      datatypes.JSONSlice[string]{},
		Activities: datatypes.JSONSlice[string]{},
	}
}

// IsEmpty 五类偏好是否全部为空
func (p *Preferences) IsEmpty() bool {
	return p == nil || (len(p.Dietary) == 0 && len(p.Allergies) == 0 &&
		len(p.Cuisines) == 0 && len(p.Music) == 0 && len(p.Activities) == 0)
}

// CleanList 去除首尾空白并丢弃空项，保留原有大小写与顺序
func CleanList(items []string) datatypes.JSONSlice[string] {
	out := make(datatypes.JSONSlice[string], 0, len(items))
	for _, item := range items {
		if s := strings.TrimSpace(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}
