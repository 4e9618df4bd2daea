package service

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/wb-go/wbf/ginext"

	"neksa/internal/checkin"
	"neksa/internal/dto"
	"neksa/internal/export"
	"neksa/internal/importer"
	"neksa/internal/model"
	"neksa/internal/query"
	"neksa/internal/rabbit"
	"neksa/internal/repo"
	"neksa/internal/ticket"
	"neksa/pkg/validator"
)

const reminderLead = 24 * time.Hour

type Service interface {
	CreateEvent(ctx *ginext.Context)
	GetAllEvents(ctx *ginext.Context)
	GetEvent(ctx *ginext.Context)
	Register(ctx *ginext.Context)
	Scan(ctx *ginext.Context)
	ImportCSV(ctx *ginext.Context)
	ExportCSV(ctx *ginext.Context)
	ListRegistrations(ctx *ginext.Context)
	DownloadTicket(ctx *ginext.Context)
	PatchRegistration(ctx *ginext.Context)
}

type service struct {
	repo    repo.Repository
	machine *checkin.Machine
	log     *zerolog.Logger
	rbt     *rabbit.Client
}

func NewService(repo repo.Repository, machine *checkin.Machine, logger *zerolog.Logger, rbt *rabbit.Client) Service {
	return &service{
		repo:    repo,
		machine: machine,
		log:     logger,
		rbt:     rbt,
	}
}

func (s *service) CreateEvent(ctx *ginext.Context) {
	var req dto.CreateEventRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		s.log.Error().Err(err).Msg("failed to parse create event request")
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid JSON format")
		return
	}

	if verr := validator.Validate(ctx, req); verr != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, fmt.Sprintf("%v", verr))
		return
	}

	slug := req.Slug
	if slug == "" {
		slug = model.DeriveSlug(req.Name)
	}

	event := &model.Event{
		Name:        req.Name,
		Slug:        slug,
		Date:        req.Date,
		Address:     req.Address,
		Description: req.Description,
	}

	id, err := s.repo.CreateEvent(ctx.Request.Context(), event)
	if err != nil {
		if errors.Is(err, repo.ErrSlugTaken) {
			dto.BadResponseError(ctx, dto.SlugTaken, "Slug is already in use")
			return
		}
		s.log.Error().Err(err).Msg("failed to create event in DB")
		dto.InternalServerError(ctx)
		return
	}

	s.log.Info().Int64("event_id", id).Str("slug", slug).Msg("event created successfully")

	dto.SuccessCreatedResponse(ctx, dto.EventResponse{
		ID:          id,
		Name:        event.Name,
		Slug:        event.Slug,
		Date:        event.Date,
		Address:     event.Address,
		Description: event.Description,
	})
}

func (s *service) GetAllEvents(ctx *ginext.Context) {
	events, err := s.repo.GetAllEvents(ctx.Request.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("failed to list events")
		dto.InternalServerError(ctx)
		return
	}

	resp := make([]dto.EventResponse, 0, len(events))
	for _, e := range events {
		count, err := s.repo.CountRegistrations(ctx.Request.Context(), e.ID)
		if err != nil {
			s.log.Error().Err(err).Int64("event_id", e.ID).Msg("failed to count registrations")
			continue
		}
		resp = append(resp, dto.EventResponse{
			ID:            e.ID,
			Name:          e.Name,
			Slug:          e.Slug,
			Date:          e.Date,
			Address:       e.Address,
			Description:   e.Description,
			Registrations: count,
			CreatedAt:     e.CreatedAt,
		})
	}

	dto.SuccessResponse(ctx, resp)
}

// GetEvent resolves the public locator: slug first, then id when numeric.
func (s *service) GetEvent(ctx *ginext.Context) {
	event, err := s.repo.GetEventBySlugOrID(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		if errors.Is(err, repo.ErrEventNotFound) {
			dto.EventNotFoundError(ctx)
			return
		}
		s.log.Error().Err(err).Msg("failed to resolve event")
		dto.InternalServerError(ctx)
		return
	}

	count, err := s.repo.CountRegistrations(ctx.Request.Context(), event.ID)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to count registrations")
		dto.InternalServerError(ctx)
		return
	}

	dto.SuccessResponse(ctx, dto.EventResponse{
		ID:            event.ID,
		Name:          event.Name,
		Slug:          event.Slug,
		Date:          event.Date,
		Address:       event.Address,
		Description:   event.Description,
		Registrations: count,
		CreatedAt:     event.CreatedAt,
	})
}

func (s *service) Register(ctx *ginext.Context) {
	eventID, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid event ID")
		return
	}

	var req dto.CreateRegistrationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid JSON format")
		return
	}

	if verr := validator.Validate(ctx, req); verr != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, fmt.Sprintf("%v", verr))
		return
	}

	event, err := s.repo.GetEventByID(ctx.Request.Context(), eventID)
	if err != nil {
		if errors.Is(err, repo.ErrEventNotFound) {
			dto.EventNotFoundError(ctx)
			return
		}
		s.log.Error().Err(err).Msg("failed to load event for registration")
		dto.InternalServerError(ctx)
		return
	}

	registration := &model.Registration{
		EventID:  eventID,
		FullName: req.FullName,
		Title:    req.Title,
		Email:    req.Email,
		Phone:    req.Phone,
		DOB:      req.DOB,
		Gender:   req.Gender,
		Status:   model.StatusPending,
	}

	id, err := s.repo.InsertRegistration(ctx.Request.Context(), registration)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to create registration")
		dto.InternalServerError(ctx)
		return
	}
	registration.ID = id

	s.log.Info().
		Int64("registration_id", id).
		Int64("event_id", eventID).
		Msg("registration created successfully")

	s.publish(dto.RegistrationEventMessage{
		Kind:           rabbit.KindRegistrationCreated,
		RegistrationID: id,
		EventID:        eventID,
	}, 0)
	s.publishReminder(registration, event)

	dto.SuccessCreatedResponse(ctx, dto.RegistrationResponse{
		ID:            id,
		EventID:       eventID,
		FullName:      registration.FullName,
		Title:         registration.Title,
		Email:         registration.Email,
		Phone:         registration.Phone,
		DOB:           registration.DOB,
		Gender:        registration.Gender,
		Status:        registration.Status,
		TicketPayload: ticket.Encode(id),
		CreatedAt:     time.Now(),
	})
}

func (s *service) Scan(ctx *ginext.Context) {
	eventID, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid event ID")
		return
	}

	var req dto.ScanRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid JSON format")
		return
	}

	outcome, err := s.machine.Scan(ctx.Request.Context(), req.Payload, eventID)
	if err != nil {
		s.log.Error().Err(err).Int64("event_id", eventID).Msg("scan failed against store")
		dto.InternalServerError(ctx)
		return
	}

	switch outcome.Code {
	case checkin.Accepted:
		s.publish(dto.RegistrationEventMessage{
			Kind:           rabbit.KindRegistrationAttended,
			RegistrationID: outcome.Registration.ID,
			EventID:        eventID,
		}, 0)
		dto.SuccessResponse(ctx, dto.ScanResponse{
			Code:         string(outcome.Code),
			Registration: dto.RegistrationToResponse(outcome.Registration),
		})
	case checkin.AlreadyCheckedIn:
		// Expected on a duplicate scan; informational, not a fault.
		dto.ScanRejectedResponse(ctx, 409, dto.AlreadyCheckedIn,
			"Ticket was already checked in",
			dto.RegistrationToResponse(outcome.Registration))
	case checkin.WrongEvent:
		dto.ScanRejectedResponse(ctx, 403, dto.TicketWrongEvent,
			"Ticket belongs to another event", nil)
	case checkin.UnknownTicket:
		dto.ScanRejectedResponse(ctx, 404, dto.TicketUnknown,
			"No registration matches this ticket", nil)
	default:
		dto.ScanRejectedResponse(ctx, 400, dto.TicketMalformed,
			"Ticket payload is malformed", nil)
	}
}

func (s *service) ImportCSV(ctx *ginext.Context) {
	eventID, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid event ID")
		return
	}

	if _, err := s.repo.GetEventByID(ctx.Request.Context(), eventID); err != nil {
		if errors.Is(err, repo.ErrEventNotFound) {
			dto.EventNotFoundError(ctx)
			return
		}
		s.log.Error().Err(err).Msg("failed to load event for import")
		dto.InternalServerError(ctx)
		return
	}

	rows, err := readCSVRows(ctx)
	if err != nil {
		dto.BadResponseError(ctx, dto.FieldBadFormat, fmt.Sprintf("Cannot parse CSV: %v", err))
		return
	}

	drafts, rejects := importer.Validate(rows, eventID)
	if len(drafts) == 0 {
		s.log.Warn().
			Int64("event_id", eventID).
			Int("rejected", len(rejects)).
			Msg("import produced no valid rows")
		ctx.JSON(400, dto.Response{
			Status: "error",
			Error:  &dto.Error{Code: dto.NoValidRows, Desc: "No valid rows in upload"},
			Data:   dto.ImportResponse{Rejected: rejects},
		})
		return
	}

	ids, err := s.repo.InsertRegistrations(ctx.Request.Context(), drafts)
	if err != nil {
		s.log.Error().Err(err).Int64("event_id", eventID).Msg("bulk insert failed")
		dto.InternalServerError(ctx)
		return
	}

	s.log.Info().
		Int64("event_id", eventID).
		Int("imported", len(ids)).
		Int("rejected", len(rejects)).
		Msg("import completed")

	dto.SuccessCreatedResponse(ctx, dto.ImportResponse{
		Imported: len(ids),
		IDs:      ids,
		Rejected: rejects,
	})
}

func (s *service) ExportCSV(ctx *ginext.Context) {
	eventID, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid event ID")
		return
	}

	event, err := s.repo.GetEventByID(ctx.Request.Context(), eventID)
	if err != nil {
		if errors.Is(err, repo.ErrEventNotFound) {
			dto.EventNotFoundError(ctx)
			return
		}
		s.log.Error().Err(err).Msg("failed to load event for export")
		dto.InternalServerError(ctx)
		return
	}

	regs, err := s.repo.GetRegistrationsByEventID(ctx.Request.Context(), eventID)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to list registrations for export")
		dto.InternalServerError(ctx)
		return
	}

	blob := export.Registrations(regs)
	filename := model.DeriveSlug(event.Name) + "_registrations.csv"
	ctx.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	ctx.Data(200, "text/csv; charset=utf-8", []byte(blob))
}

func (s *service) ListRegistrations(ctx *ginext.Context) {
	eventID, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid event ID")
		return
	}

	regs, err := s.repo.GetRegistrationsByEventID(ctx.Request.Context(), eventID)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to list registrations")
		dto.InternalServerError(ctx)
		return
	}

	offset, _ := strconv.Atoi(ctx.Query("offset"))
	limit, _ := strconv.Atoi(ctx.Query("limit"))
	page := query.Shape(regs, query.Params{
		Search: ctx.Query("q"),
		Sort:   ctx.Query("sort"),
		Order:  ctx.Query("order"),
		Offset: offset,
		Limit:  limit,
	})

	items := make([]dto.RegistrationResponse, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, *dto.RegistrationToResponse(&page.Items[i]))
	}

	dto.SuccessResponse(ctx, struct {
		Items []dto.RegistrationResponse `json:"items"`
		Total int                        `json:"total"`
	}{Items: items, Total: page.Total})
}

func (s *service) DownloadTicket(ctx *ginext.Context) {
	regID, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid registration ID")
		return
	}

	reg, err := s.repo.GetRegistrationByID(ctx.Request.Context(), regID)
	if err != nil {
		if errors.Is(err, repo.ErrRegistrationNotFound) {
			dto.RegistrationNotFoundError(ctx)
			return
		}
		s.log.Error().Err(err).Msg("failed to load registration for ticket")
		dto.InternalServerError(ctx)
		return
	}

	event, err := s.repo.GetEventByID(ctx.Request.Context(), reg.EventID)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to load event for ticket")
		dto.InternalServerError(ctx)
		return
	}

	doc, err := ticket.RenderDocument(reg, event)
	if err != nil {
		s.log.Error().Err(err).Int64("registration_id", regID).Msg("failed to render ticket")
		dto.InternalServerError(ctx)
		return
	}

	ctx.Header("Content-Disposition", `attachment; filename="`+ticket.Filename(reg.FullName)+`"`)
	ctx.Data(200, "application/pdf", doc)
}

func (s *service) PatchRegistration(ctx *ginext.Context) {
	regID, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid registration ID")
		return
	}

	var req dto.PatchRegistrationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid JSON format")
		return
	}

	if verr := validator.Validate(ctx, req); verr != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, fmt.Sprintf("%v", verr))
		return
	}

	patch := repo.RegistrationPatch{
		FullName: req.FullName,
		Title:    req.Title,
		Email:    req.Email,
		Phone:    req.Phone,
		DOB:      req.DOB,
		Gender:   req.Gender,
	}
	if req.Status != nil {
		status := model.Status(*req.Status)
		patch.Status = &status
	}

	if err := s.repo.UpdateRegistrationFields(ctx.Request.Context(), regID, patch); err != nil {
		if errors.Is(err, repo.ErrRegistrationNotFound) {
			dto.RegistrationNotFoundError(ctx)
			return
		}
		s.log.Error().Err(err).Int64("registration_id", regID).Msg("failed to patch registration")
		dto.InternalServerError(ctx)
		return
	}

	reg, err := s.repo.GetRegistrationByID(ctx.Request.Context(), regID)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to reload patched registration")
		dto.InternalServerError(ctx)
		return
	}

	s.log.Info().Int64("registration_id", regID).Msg("registration patched by admin")
	dto.SuccessResponse(ctx, dto.RegistrationToResponse(reg))
}

func (s *service) publish(msg dto.RegistrationEventMessage, delaySeconds int) {
	payload, err := json.Marshal(msg)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to marshal registration message")
		return
	}
	if err := s.rbt.Publish(payload, delaySeconds); err != nil {
		s.log.Error().Err(err).Str("kind", msg.Kind).Msg("failed to publish registration message")
	}
}

// publishReminder schedules a reminder mail a day before the event through
// the delayed exchange. Past events get nothing; events closer than the lead
// time get the reminder immediately.
func (s *service) publishReminder(reg *model.Registration, event *model.Event) {
	if event.Date.Before(time.Now()) {
		return
	}
	delay := int(time.Until(event.Date.Add(-reminderLead)).Seconds())
	if delay < 0 {
		delay = 0
	}
	s.publish(dto.RegistrationEventMessage{
		Kind:           rabbit.KindEventReminder,
		RegistrationID: reg.ID,
		EventID:        event.ID,
	}, delay)
}

// readCSVRows accepts either a multipart upload under "file" or a raw CSV
// body and maps each record onto its header row.
func readCSVRows(ctx *ginext.Context) ([]importer.Row, error) {
	var src io.Reader = ctx.Request.Body
	if file, _, err := ctx.Request.FormFile("file"); err == nil {
		defer file.Close()
		src = file
	}

	reader := csv.NewReader(src)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, errors.New("file has no data rows")
	}

	header := records[0]
	rows := make([]importer.Row, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make(importer.Row, len(header))
		for i, col := range header {
			if i < len(record) {
				row[col] = record[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}
