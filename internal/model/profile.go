package model

import "time"

const (
	GuestUserID      = "guest-user"
	GuestUsername    = "Guest"
	GuestInitialUnit = 1000
)

// Profile запись профиля игрока во внешнем хранилище
type Profile struct {
	ID                 string
	Username           string
	FirstName          string
	LastName           string
	Credits            int
	CarterCash         int
	CarterCashProgress int
	UpdatedAt          time.Time
}

func (p Profile) Bankroll() Bankroll {
	return Bankroll{
		Units:              p.Credits,
		CarterCash:         p.CarterCash,
		CarterCashProgress: p.CarterCashProgress,
	}
}

func (p Profile) IsGuest() bool {
	return p.ID == GuestUserID
}

// GuestProfile профиль по умолчанию, не сохраняется
func GuestProfile() Profile {
	return Profile{
		ID:       GuestUserID,
		Username: GuestUsername,
		Credits:  GuestInitialUnit,
	}
}

// ProfileUpdate только изменившиеся поля; nil не обновляется
type ProfileUpdate struct {
	Credits            *int
	CarterCash         *int
	CarterCashProgress *int
}

func (u ProfileUpdate) Empty() bool {
	return u.Credits == nil && u.CarterCash == nil && u.CarterCashProgress == nil
}

// Diff поля bankroll, отличающиеся от prev
func Diff(prev, next Bankroll) ProfileUpdate {
	var u ProfileUpdate
	if prev.Units != next.Units {
		v := next.Units
		u.Credits = &v
	}
	if prev.CarterCash != next.CarterCash {
		v := next.CarterCash
		u.CarterCash = &v
	}
	if prev.CarterCashProgress != next.CarterCashProgress {
		v := next.CarterCashProgress
		u.CarterCashProgress = &v
	}
	return u
}
