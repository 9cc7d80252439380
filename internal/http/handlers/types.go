package handlers

import "time"

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type createUserRequest struct {
	Username string `json:"username" binding:"required,max=50"`
	Password string `json:"password" binding:"required,min=8"`
	IsAdmin  bool   `json:"isAdmin"`
}

type createEntryRequest struct {
	EventDate            time.Time `json:"eventDate"`
	Accident             bool      `json:"accident"`
	ChangePadOrUnderwear bool      `json:"changePadOrUnderwear"`
	LeakAmount           int       `json:"leakAmount" binding:"required,min=1,max=5"`
	Urgency              int       `json:"urgency" binding:"required,min=1,max=5"`
	AwokeFromSleep       bool      `json:"awokeFromSleep"`
	PainLevel            int       `json:"painLevel" binding:"required,min=1,max=5"`
	Notes                string    `json:"notes"`
}
