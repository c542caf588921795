// Package booking 提供预订相关的 HTTP Handler
package booking

import (
	"github.com/gin-gonic/gin"

	"github.com/yuewen2025/homestay-backend/internal/common/handler"
	"github.com/yuewen2025/homestay-backend/internal/common/response"
	bookingService "github.com/yuewen2025/homestay-backend/internal/service/booking"
)

// Handler 预订处理器
type Handler struct {
	bookingService *bookingService.BookingService
}

// NewHandler 创建预订处理器
func NewHandler(bookingSvc *bookingService.BookingService) *Handler {
	return &Handler{
		bookingService: bookingSvc,
	}
}

// CreateBooking 创建预订
// @Summary 创建预订
// @Tags 预订
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body bookingService.CreateBookingRequest true "请求参数"
// @Success 200 {object} response.Response{data=bookingService.BookingInfo}
// @Router /bookings [post]
func (h *Handler) CreateBooking(c *gin.Context) {
	userID, ok := handler.RequireUserID(c)
	if !ok {
		return
	}

	var req bookingService.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	booking, err := h.bookingService.CreateBooking(c.Request.Context(), userID, &req)
	handler.MustSucceed(c, err, booking)
}

// GetBooking 获取预订详情
// @Summary 获取预订详情
// @Tags 预订
// @Produce json
// @Security BearerAuth
// @Param id path int true "预订ID"
// @Success 200 {object} response.Response{data=bookingService.BookingInfo}
// @Router /bookings/{id} [get]
func (h *Handler) GetBooking(c *gin.Context) {
	userID, bookingID, ok := handler.RequireUserAndParseID(c, "预订")
	if !ok {
		return
	}

	booking, err := h.bookingService.GetBooking(c.Request.Context(), bookingID, userID)
	handler.MustSucceed(c, err, booking)
}

// GetBookingByNo 根据预订号获取预订
// @Summary 根据预订号获取预订
// @Tags 预订
// @Produce json
// @Security BearerAuth
// @Param booking_no path string true "预订号"
// @Success 200 {object} response.Response{data=bookingService.BookingInfo}
// @Router /bookings/no/{booking_no} [get]
func (h *Handler) GetBookingByNo(c *gin.Context) {
	userID, ok := handler.RequireUserID(c)
	if !ok {
		return
	}

	bookingNo := c.Param("booking_no")
	if bookingNo == "" {
		response.BadRequest(c, "请提供预订号")
		return
	}

	booking, err := h.bookingService.GetBookingByNo(c.Request.Context(), bookingNo, userID)
	handler.MustSucceed(c, err, booking)
}

// ListMyBookings 获取我的预订列表
// @Summary 获取我的预订列表
// @Tags 预订
// @Produce json
// @Security BearerAuth
// @Param page query int false "页码"
// @Param page_size query int false "每页数量"
// @Param status query string false "状态"
// @Success 200 {object} response.Response{data=[]bookingService.BookingInfo}
// @Router /bookings [get]
func (h *Handler) ListMyBookings(c *gin.Context) {
	userID, ok := handler.RequireUserID(c)
	if !ok {
		return
	}

	p := handler.BindPagination(c)
	var status *string
	if s := c.Query("status"); s != "" {
		status = &s
	}

	bookings, total, err := h.bookingService.ListGuestBookings(c.Request.Context(), userID, p.Page, p.PageSize, status)
	handler.MustSucceedPage(c, err, bookings, total, p.Page, p.PageSize)
}

// PayBooking 支付预订
// @Summary 支付预订
// @Tags 预订
// @Produce json
// @Security BearerAuth
// @Param id path int true "预订ID"
// @Success 200 {object} response.Response{data=bookingService.BookingInfo}
// @Router /bookings/{id}/pay [post]
func (h *Handler) PayBooking(c *gin.Context) {
	userID, bookingID, ok := handler.RequireUserAndParseID(c, "预订")
	if !ok {
		return
	}

	booking, err := h.bookingService.PayBooking(c.Request.Context(), bookingID, userID)
	handler.MustSucceed(c, err, booking)
}

// CancelBooking 取消预订
// @Summary 取消预订
// @Tags 预订
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "预订ID"
// @Param request body bookingService.CancelRequest false "请求参数"
// @Success 200 {object} response.Response
// @Router /bookings/{id}/cancel [post]
func (h *Handler) CancelBooking(c *gin.Context) {
	userID, bookingID, ok := handler.RequireUserAndParseID(c, "预订")
	if !ok {
		return
	}

	var req bookingService.CancelRequest
	_ = c.ShouldBindJSON(&req)

	if handler.HandleError(c, h.bookingService.CancelBooking(c.Request.Context(), bookingID, userID, req.Reason)) {
		return
	}
	response.Success(c, nil)
}

// Reschedule 改期
// @Summary 预订改期
// @Tags 预订
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "预订ID"
// @Param request body bookingService.RescheduleRequest true "请求参数"
// @Success 200 {object} response.Response{data=bookingService.BookingInfo}
// @Router /bookings/{id}/reschedule [put]
func (h *Handler) Reschedule(c *gin.Context) {
	userID, bookingID, ok := handler.RequireUserAndParseID(c, "预订")
	if !ok {
		return
	}

	var req bookingService.RescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	booking, err := h.bookingService.Reschedule(c.Request.Context(), bookingID, userID, &req)
	handler.MustSucceed(c, err, booking)
}

// GetCheckInQRCode 获取入住核验二维码
// @Summary 获取入住核验二维码
// @Tags 预订
// @Produce json
// @Security BearerAuth
// @Param id path int true "预订ID"
// @Success 200 {object} response.Response
// @Router /bookings/{id}/qrcode [get]
func (h *Handler) GetCheckInQRCode(c *gin.Context) {
	userID, bookingID, ok := handler.RequireUserAndParseID(c, "预订")
	if !ok {
		return
	}

	dataURL, err := h.bookingService.GetCheckInQRCode(c.Request.Context(), bookingID, userID)
	if handler.HandleError(c, err) {
		return
	}
	response.Success(c, gin.H{"qrcode": dataURL})
}

// ListHotelBookings 获取民宿的预订列表（房东）
// @Summary 获取民宿预订列表
// @Tags 房东
// @Produce json
// @Security BearerAuth
// @Param id path int true "民宿ID"
// @Param page query int false "页码"
// @Param page_size query int false "每页数量"
// @Param status query string false "状态"
// @Success 200 {object} response.Response{data=[]bookingService.BookingInfo}
// @Router /host/hotels/{id}/bookings [get]
func (h *Handler) ListHotelBookings(c *gin.Context) {
	hostID, hotelID, ok := handler.RequireHostAndParseID(c, "民宿")
	if !ok {
		return
	}

	p := handler.BindPagination(c)
	var status *string
	if s := c.Query("status"); s != "" {
		status = &s
	}

	bookings, total, err := h.bookingService.ListHotelBookings(c.Request.Context(), hostID, hotelID, p.Page, p.PageSize, status)
	handler.MustSucceedPage(c, err, bookings, total, p.Page, p.PageSize)
}

// ConfirmBooking 确认预订（房东）
// @Summary 确认预订
// @Tags 房东
// @Produce json
// @Security BearerAuth
// @Param id path int true "预订ID"
// @Success 200 {object} response.Response{data=bookingService.BookingInfo}
// @Router /host/bookings/{id}/confirm [post]
func (h *Handler) ConfirmBooking(c *gin.Context) {
	hostID, bookingID, ok := handler.RequireHostAndParseID(c, "预订")
	if !ok {
		return
	}

	booking, err := h.bookingService.ConfirmBooking(c.Request.Context(), bookingID, hostID)
	handler.MustSucceed(c, err, booking)
}

// RejectBooking 拒绝预订（房东）
// @Summary 拒绝预订
// @Tags 房东
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "预订ID"
// @Param request body bookingService.CancelRequest false "请求参数"
// @Success 200 {object} response.Response{data=bookingService.BookingInfo}
// @Router /host/bookings/{id}/reject [post]
func (h *Handler) RejectBooking(c *gin.Context) {
	hostID, bookingID, ok := handler.RequireHostAndParseID(c, "预订")
	if !ok {
		return
	}

	var req bookingService.CancelRequest
	_ = c.ShouldBindJSON(&req)

	booking, err := h.bookingService.RejectBooking(c.Request.Context(), bookingID, hostID, req.Reason)
	handler.MustSucceed(c, err, booking)
}

// CheckInBooking 办理入住（房东）
// @Summary 办理入住
// @Tags 房东
// @Produce json
// @Security BearerAuth
// @Param id path int true "预订ID"
// @Success 200 {object} response.Response{data=bookingService.BookingInfo}
// @Router /host/bookings/{id}/check-in [post]
func (h *Handler) CheckInBooking(c *gin.Context) {
	hostID, bookingID, ok := handler.RequireHostAndParseID(c, "预订")
	if !ok {
		return
	}

	booking, err := h.bookingService.CheckInBooking(c.Request.Context(), bookingID, hostID)
	handler.MustSucceed(c, err, booking)
}

// CheckOutBooking 办理退房（房东）
// @Summary 办理退房
// @Tags 房东
// @Produce json
// @Security BearerAuth
// @Param id path int true "预订ID"
// @Success 200 {object} response.Response{data=bookingService.BookingInfo}
// @Router /host/bookings/{id}/check-out [post]
func (h *Handler) CheckOutBooking(c *gin.Context) {
	hostID, bookingID, ok := handler.RequireHostAndParseID(c, "预订")
	if !ok {
		return
	}

	booking, err := h.bookingService.CheckOutBooking(c.Request.Context(), bookingID, hostID)
	handler.MustSucceed(c, err, booking)
}
