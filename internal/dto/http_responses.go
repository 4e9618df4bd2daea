package dto

import (
	"time"

	"github.com/wb-go/wbf/ginext"

	"neksa/internal/importer"
	"neksa/internal/model"
)

const (
	FieldBadFormat     = "FIELD_BADFORMAT"
	FieldIncorrect     = "FIELD_INCORRECT"
	ServiceUnavailable = "SERVICE_UNAVAILABLE"
	InternalError      = "Service is currently unavailable. Please try again later."

	EventNotFound        = "EVENT_NOT_FOUND"
	RegistrationNotFound = "REGISTRATION_NOT_FOUND"
	SlugTaken            = "SLUG_TAKEN"
	NoValidRows          = "NO_VALID_ROWS"
	Unauthorized         = "UNAUTHORIZED"

	TicketMalformed  = "TICKET_MALFORMED"
	TicketUnknown    = "TICKET_UNKNOWN"
	TicketWrongEvent = "TICKET_WRONG_EVENT"
	AlreadyCheckedIn = "ALREADY_CHECKED_IN"
)

type CreateEventRequest struct {
	Name        string    `json:"name" validate:"required,max=255"`
	Slug        string    `json:"slug" validate:"omitempty,slug,max=255"`
	Date        time.Time `json:"date" validate:"required"`
	Address     string    `json:"address"`
	Description string    `json:"description"`
}

// CreateRegistrationRequest is the direct (self-service) registration form.
// Unlike bulk import, title is optional here.
type CreateRegistrationRequest struct {
	FullName string `json:"full_name" validate:"required,min=2,max=255"`
	Title    string `json:"title" validate:"max=255"`
	Email    string `json:"email" validate:"omitempty,email"`
	Phone    string `json:"phone"`
	DOB      string `json:"dob"`
	Gender   string `json:"gender"`
}

type ScanRequest struct {
	Payload string `json:"payload" validate:"required"`
}

// PatchRegistrationRequest is the administrative override: any subset of
// fields, including a status reversal the scan path would never perform.
type PatchRegistrationRequest struct {
	FullName *string `json:"full_name"`
	Title    *string `json:"title"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Phone    *string `json:"phone"`
	DOB      *string `json:"dob"`
	Gender   *string `json:"gender"`
	Status   *string `json:"status" validate:"omitempty,oneof=pending attended"`
}

type EventResponse struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Slug          string    `json:"slug,omitempty"`
	Date          time.Time `json:"date"`
	Address       string    `json:"address,omitempty"`
	Description   string    `json:"description,omitempty"`
	Registrations int       `json:"registrations"`
	CreatedAt     time.Time `json:"created_at"`
}

type RegistrationResponse struct {
	ID            int64        `json:"id"`
	EventID       int64        `json:"event_id"`
	FullName      string       `json:"full_name"`
	Title         string       `json:"title,omitempty"`
	Email         string       `json:"email,omitempty"`
	Phone         string       `json:"phone,omitempty"`
	DOB           string       `json:"dob,omitempty"`
	Gender        string       `json:"gender,omitempty"`
	Status        model.Status `json:"status"`
	TicketPayload string       `json:"ticket_payload,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

type ScanResponse struct {
	Code         string                `json:"code"`
	Registration *RegistrationResponse `json:"registration,omitempty"`
}

type ImportResponse struct {
	Imported int                 `json:"imported"`
	IDs      []int64             `json:"ids,omitempty"`
	Rejected []importer.RowError `json:"rejected,omitempty"`
}

type RegistrationEventMessage struct {
	Kind           string `json:"kind"`
	RegistrationID int64  `json:"registration_id"`
	EventID        int64  `json:"event_id"`
}

func RegistrationToResponse(r *model.Registration) *RegistrationResponse {
	if r == nil {
		return nil
	}
	return &RegistrationResponse{
		ID:        r.ID,
		EventID:   r.EventID,
		FullName:  r.FullName,
		Title:     r.Title,
		Email:     r.Email,
		Phone:     r.Phone,
		DOB:       r.DOB,
		Gender:    r.Gender,
		Status:    r.Status,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

type Response struct {
	Status string `json:"status"`
	Error  *Error `json:"error,omitempty"`
	Data   any    `json:"data,omitempty"`
}

type Error struct {
	Code string `json:"code"`
	Desc string `json:"desc"`
}

func BadResponseError(c *ginext.Context, code, desc string) {
	errorResponse(c, 400, code, desc)
}

// ScanRejectedResponse carries both the rejection code and, when known, the
// registration the ticket points at, so scanners can show who was rejected.
func ScanRejectedResponse(c *ginext.Context, status int, code, desc string, data any) {
	c.JSON(status, Response{
		Status: "error",
		Error: &Error{
			Code: code,
			Desc: desc,
		},
		Data: data,
	})
}

func errorResponse(c *ginext.Context, status int, code, desc string) {
	c.JSON(status, Response{
		Status: "error",
		Error: &Error{
			Code: code,
			Desc: desc,
		},
	})
}

func InternalServerError(c *ginext.Context) {
	errorResponse(c, 500, ServiceUnavailable, InternalError)
}

func UnauthorizedError(c *ginext.Context) {
	errorResponse(c, 401, Unauthorized, "Admin token missing or invalid")
}

func EventNotFoundError(c *ginext.Context) {
	errorResponse(c, 404, EventNotFound, "Event not found")
}

func RegistrationNotFoundError(c *ginext.Context) {
	errorResponse(c, 404, RegistrationNotFound, "Registration not found")
}

func SuccessResponse(c *ginext.Context, data any) {
	c.JSON(200, Response{
		Status: "ok",
		Data:   data,
	})
}

func SuccessCreatedResponse(c *ginext.Context, data any) {
	c.JSON(201, Response{
		Status: "ok",
		Data:   data,
	})
}
