package models

import "github.com/google/uuid"

type Airport struct {
	ID       uuid.UUID `json:"id" db:"id"`
	IataCode string    `json:"iata_code" db:"iata_code"` // 3 буквы
	IcaoCode string    `json:"icao_code" db:"icao_code"` // 4 буквы
	Name     string    `json:"name" db:"name"`
	Timezone string    `json:"timezone" db:"timezone"` // IANA id, например "Asia/Seoul"
}

type Aircraft struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Model        string    `json:"model" db:"model"`
	Registration string    `json:"registration" db:"registration"`
}
