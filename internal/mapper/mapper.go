package mapper

import (
	"time"

	"github.com/lankaline/freight-api/internal/domain"
)

// ToPortDTO converts Port to PortDTO
func ToPortDTO(port *domain.Port) domain.PortDTO {
	return domain.PortDTO{
		ID:          port.ID,
		Name:        port.Name,
		Unlocode:    port.Unlocode,
		CountryCode: port.CountryCode,
	}
}

// ToTradeLaneDTO converts TradeLane to TradeLaneDTO
func ToTradeLaneDTO(lane *domain.TradeLane) domain.TradeLaneDTO {
	dto := domain.TradeLaneDTO{
		ID:     lane.ID,
		Code:   lane.Code,
		Name:   lane.Name,
		Region: lane.Region,
	}
	if lane.OriginPort != nil {
		origin := ToPortDTO(lane.OriginPort)
		dto.OriginPort = &origin
	}
	if lane.DestinationPort != nil {
		destination := ToPortDTO(lane.DestinationPort)
		dto.DestinationPort = &destination
	}
	return dto
}

// ToEquipmentTypeDTO converts EquipmentType to EquipmentTypeDTO
func ToEquipmentTypeDTO(equip *domain.EquipmentType) domain.EquipmentTypeDTO {
	return domain.EquipmentTypeDTO{
		ID:                equip.ID,
		Code:              equip.Code,
		Name:              equip.Name,
		IsReefer:          equip.IsReefer,
		IsFlatRackOpenTop: equip.IsFlatRackOpenTop,
	}
}

// ToShippingLineDTO converts ShippingLine to ShippingLineDTO
func ToShippingLineDTO(line *domain.ShippingLine) domain.ShippingLineDTO {
	return domain.ShippingLineDTO{
		ID:       line.ID,
		ScacCode: line.ScacCode,
		Name:     line.Name,
	}
}

// ToUserDTO converts User to UserDTO
func ToUserDTO(user *domain.User) domain.UserDTO {
	return domain.UserDTO{
		ID:          user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Role:        user.Role,
		SbuID:       user.SbuID,
		Active:      user.Active,
	}
}

// ToCustomerDTO converts Customer to CustomerDTO
func ToCustomerDTO(customer *domain.Customer) domain.CustomerDTO {
	return domain.CustomerDTO{
		ID:             customer.ID,
		Name:           customer.Name,
		Address:        customer.Address,
		ContactEmail:   customer.ContactEmail,
		ContactPhone:   customer.ContactPhone,
		ApprovalStatus: customer.ApprovalStatus,
		ApprovalNote:   customer.ApprovalNote,
		CreatedByID:    customer.CreatedByID,
		DecidedByID:    customer.DecidedByID,
		DecidedAt:      customer.DecidedAt,
		CreatedAt:      customer.CreatedAt,
	}
}

// ToRateRequestResponseDTO converts RateRequestResponse to its DTO
func ToRateRequestResponseDTO(response *domain.RateRequestResponse) domain.RateRequestResponseDTO {
	return domain.RateRequestResponseDTO{
		ID:                   response.ID,
		RateRequestID:        response.RateRequestID,
		LineNo:               response.LineNo,
		RequestedLineID:      response.RequestedLineID,
		RequestedEquipTypeID: response.RequestedEquipTypeID,
		VesselName:           response.VesselName,
		Eta:                  response.Eta,
		Etd:                  response.Etd,
		FclCutoff:            response.FclCutoff,
		DocCutoff:            response.DocCutoff,
		ValidTo:              response.ValidTo,
		Charges:              response.Charges,
		ResponderID:          response.ResponderID,
		CreatedAt:            response.CreatedAt,
	}
}

// ToLineQuoteDTO converts LineQuote to LineQuoteDTO
func ToLineQuoteDTO(quote *domain.LineQuote) domain.LineQuoteDTO {
	return domain.LineQuoteDTO{
		ID:            quote.ID,
		RateRequestID: quote.RateRequestID,
		LineID:        quote.LineID,
		EquipTypeID:   quote.EquipTypeID,
		Terms:         quote.Terms,
		ValidTo:       quote.ValidTo,
		Selected:      quote.Selected,
		QuotedByID:    quote.QuotedByID,
		CreatedAt:     quote.CreatedAt,
	}
}

// ToRateRequestDTO converts RateRequest to RateRequestDTO, including any
// preloaded responses and line quotes.
func ToRateRequestDTO(request *domain.RateRequest) domain.RateRequestDTO {
	dto := domain.RateRequestDTO{
		ID:                request.ID,
		RefNo:             request.RefNo,
		Mode:              request.Mode,
		CargoType:         request.CargoType,
		PolID:             request.PolID,
		PodID:             request.PodID,
		DeliveryMode:      request.DeliveryMode,
		PreferredLineID:   request.PreferredLineID,
		EquipTypeID:       request.EquipTypeID,
		ReeferTemp:        request.ReeferTemp,
		PalletCount:       request.PalletCount,
		PalletDims:        request.PalletDims,
		HsCode:            request.HsCode,
		WeightTons:        request.WeightTons,
		Incoterm:          request.Incoterm,
		MarketRate:        request.MarketRate,
		Instructions:      request.Instructions,
		CargoReadyDate:    request.CargoReadyDate,
		VesselRequired:    request.VesselRequired,
		DetentionFreeTime: request.DetentionFreeTime,
		CustomerID:        request.CustomerID,
		SalespersonID:     request.SalespersonID,
		Status:            request.Status,
		RejectRemark:      request.RejectRemark,
		CreatedAt:         request.CreatedAt,
		UpdatedAt:         request.UpdatedAt,
	}
	for i := range request.Responses {
		dto.Responses = append(dto.Responses, ToRateRequestResponseDTO(&request.Responses[i]))
	}
	for i := range request.LineQuotes {
		dto.LineQuotes = append(dto.LineQuotes, ToLineQuoteDTO(&request.LineQuotes[i]))
	}
	return dto
}

// ToPredefinedRateDTO converts PredefinedRate to its DTO. The validity
// bucket is derived from the validity window at conversion time.
func ToPredefinedRateDTO(rate *domain.PredefinedRate, now time.Time) domain.PredefinedRateDTO {
	return domain.PredefinedRateDTO{
		ID:          rate.ID,
		TradeLaneID: rate.TradeLaneID,
		PolID:       rate.PolID,
		PodID:       rate.PodID,
		Service:     rate.Service,
		EquipTypeID: rate.EquipTypeID,
		IsLcl:       rate.IsLcl,
		ValidFrom:   rate.ValidFrom,
		ValidTo:     rate.ValidTo,
		Status:      rate.Status,
		Validity:    domain.ClassifyValidity(rate.ValidTo, now),
		Notes:       rate.Notes,
		Charges:     rate.Charges,
		CreatedAt:   rate.CreatedAt,
	}
}

// ToRODocumentDTO converts RODocument to RODocumentDTO
func ToRODocumentDTO(doc *domain.RODocument) domain.RODocumentDTO {
	return domain.RODocumentDTO{
		ID:               doc.ID,
		BookingRequestID: doc.BookingRequestID,
		Number:           doc.Number,
		FileURL:          doc.FileURL,
		ReceivedAt:       doc.ReceivedAt,
	}
}

// ToJobCompletionDTO converts JobCompletion to JobCompletionDTO
func ToJobCompletionDTO(completion *domain.JobCompletion) domain.JobCompletionDTO {
	return domain.JobCompletionDTO{
		ID:            completion.ID,
		JobID:         completion.JobID,
		Details:       completion.Details,
		CompletedByID: completion.CompletedByID,
		CreatedAt:     completion.CreatedAt,
	}
}

// ToJobDTO converts Job to JobDTO, including preloaded completions
func ToJobDTO(job *domain.Job) domain.JobDTO {
	dto := domain.JobDTO{
		ID:               job.ID,
		BookingRequestID: job.BookingRequestID,
		ErpJobNo:         job.ErpJobNo,
		OpenedByID:       job.OpenedByID,
		CreatedAt:        job.CreatedAt,
	}
	for i := range job.Completions {
		dto.Completions = append(dto.Completions, ToJobCompletionDTO(&job.Completions[i]))
	}
	return dto
}

// ToBookingRequestDTO converts BookingRequest to BookingRequestDTO
func ToBookingRequestDTO(booking *domain.BookingRequest) domain.BookingRequestDTO {
	dto := domain.BookingRequestDTO{
		ID:               booking.ID,
		RateSource:       booking.RateSource,
		CustomerID:       booking.CustomerID,
		PredefinedRateID: booking.PredefinedRateID,
		RateRequestID:    booking.RateRequestID,
		LineQuoteID:      booking.LineQuoteID,
		Status:           booking.Status,
		CancelReason:     booking.CancelReason,
		RaisedByID:       booking.RaisedByID,
		ConfirmedAt:      booking.ConfirmedAt,
		CreatedAt:        booking.CreatedAt,
		UpdatedAt:        booking.UpdatedAt,
	}
	for i := range booking.RODocuments {
		dto.RODocuments = append(dto.RODocuments, ToRODocumentDTO(&booking.RODocuments[i]))
	}
	if booking.Job != nil {
		job := ToJobDTO(booking.Job)
		dto.Job = &job
	}
	return dto
}

// ToItineraryItemDTO converts ItineraryItem to ItineraryItemDTO
func ToItineraryItemDTO(item *domain.ItineraryItem) domain.ItineraryItemDTO {
	return domain.ItineraryItemDTO{
		ID:          item.ID,
		ItineraryID: item.ItineraryID,
		Date:        item.Date,
		CustomerID:  item.CustomerID,
		LeadRef:     item.LeadRef,
		Purpose:     item.Purpose,
		PlannedTime: item.PlannedTime,
		Location:    item.Location,
		Notes:       item.Notes,
	}
}

// ToItineraryDTO converts Itinerary to ItineraryDTO
func ToItineraryDTO(itinerary *domain.Itinerary) domain.ItineraryDTO {
	dto := domain.ItineraryDTO{
		ID:           itinerary.ID,
		Type:         itinerary.Type,
		WeekStart:    itinerary.WeekStart,
		OwnerID:      itinerary.OwnerID,
		Status:       itinerary.Status,
		DecisionNote: itinerary.DecisionNote,
		DecidedByID:  itinerary.DecidedByID,
		DecidedAt:    itinerary.DecidedAt,
		CreatedAt:    itinerary.CreatedAt,
	}
	for i := range itinerary.Items {
		dto.Items = append(dto.Items, ToItineraryItemDTO(&itinerary.Items[i]))
	}
	return dto
}

// ToNotificationDTO converts Notification to NotificationDTO
func ToNotificationDTO(notification *domain.Notification) domain.NotificationDTO {
	return domain.NotificationDTO{
		ID:        notification.ID,
		UserID:    notification.UserID,
		Type:      notification.Type,
		Title:     notification.Title,
		Message:   notification.Message,
		Metadata:  notification.Metadata,
		Read:      notification.Read,
		ReadAt:    notification.ReadAt,
		CreatedAt: notification.CreatedAt,
	}
}
