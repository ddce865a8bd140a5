package model

import "time"

// MaxDeviceOSLength bounds UserDevice.DeviceOS.
const MaxDeviceOSLength = 10

// UserDevice is a push-notification target registered by a signed-in client.
// A (UserID, DeviceToken) pair is unique; registering it again only bumps LastLogin.
type UserDevice struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	UserID      uint      `json:"-" gorm:"not null;uniqueIndex:idx_user_device"`
	DeviceToken string    `json:"deviceToken" gorm:"size:512;not null;uniqueIndex:idx_user_device"`
	DeviceOS    string    `json:"deviceOs" gorm:"column:device_os;size:10;not null"`
	LastLogin   time.Time `json:"lastLogin"`
	User        *User     `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}
