// Package hotel 提供民宿相关的 HTTP Handler
package hotel

import (
	"github.com/gin-gonic/gin"

	"github.com/yuewen2025/homestay-backend/internal/common/handler"
	"github.com/yuewen2025/homestay-backend/internal/common/response"
	hotelService "github.com/yuewen2025/homestay-backend/internal/service/hotel"
)

// Handler 民宿处理器
type Handler struct {
	hotelService *hotelService.HotelService
}

// NewHandler 创建民宿处理器
func NewHandler(hotelSvc *hotelService.HotelService) *Handler {
	return &Handler{
		hotelService: hotelSvc,
	}
}

// GetHotelList 获取民宿列表
// @Summary 获取民宿列表
// @Tags 民宿
// @Accept json
// @Produce json
// @Param page query int false "页码"
// @Param page_size query int false "每页数量"
// @Param province query string false "省份"
// @Param city query string false "城市"
// @Param district query string false "区县"
// @Param keyword query string false "关键词"
// @Param min_guests query int false "最少可住人数"
// @Success 200 {object} response.Response{data=[]hotelService.HotelInfo}
// @Router /hotels [get]
func (h *Handler) GetHotelList(c *gin.Context) {
	var req hotelService.HotelListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	hotels, total, err := h.hotelService.GetHotelList(c.Request.Context(), &req)
	handler.MustSucceedPage(c, err, hotels, total, req.Page, req.PageSize)
}

// GetHotelDetail 获取民宿详情
// @Summary 获取民宿详情
// @Tags 民宿
// @Produce json
// @Param id path int true "民宿ID"
// @Success 200 {object} response.Response{data=hotelService.HotelInfo}
// @Router /hotels/{id} [get]
func (h *Handler) GetHotelDetail(c *gin.Context) {
	hotelID, ok := handler.ParseID(c, "民宿")
	if !ok {
		return
	}

	hotel, err := h.hotelService.GetHotelDetail(c.Request.Context(), hotelID)
	handler.MustSucceed(c, err, hotel)
}

// GetCities 获取城市列表
// @Summary 获取有可预订房源的城市列表
// @Tags 民宿
// @Produce json
// @Success 200 {object} response.Response{data=[]string}
// @Router /hotels/cities [get]
func (h *Handler) GetCities(c *gin.Context) {
	cities, err := h.hotelService.GetCities(c.Request.Context())
	handler.MustSucceed(c, err, cities)
}

// CreateHotel 创建民宿（房东）
// @Summary 创建民宿
// @Tags 房东
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body hotelService.CreateHotelRequest true "请求参数"
// @Success 200 {object} response.Response{data=hotelService.HotelInfo}
// @Router /host/hotels [post]
func (h *Handler) CreateHotel(c *gin.Context) {
	hostID, ok := handler.RequireHostID(c)
	if !ok {
		return
	}

	var req hotelService.CreateHotelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	hotel, err := h.hotelService.CreateHotel(c.Request.Context(), hostID, &req)
	handler.MustSucceed(c, err, hotel)
}

// UpdateHotel 更新民宿（房东）
// @Summary 更新民宿
// @Tags 房东
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "民宿ID"
// @Param request body hotelService.UpdateHotelRequest true "请求参数"
// @Success 200 {object} response.Response{data=hotelService.HotelInfo}
// @Router /host/hotels/{id} [put]
func (h *Handler) UpdateHotel(c *gin.Context) {
	hostID, hotelID, ok := handler.RequireHostAndParseID(c, "民宿")
	if !ok {
		return
	}

	var req hotelService.UpdateHotelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	hotel, err := h.hotelService.UpdateHotel(c.Request.Context(), hostID, hotelID, &req)
	handler.MustSucceed(c, err, hotel)
}

// GetHostHotel 获取房东本人的民宿详情
// @Summary 获取房东民宿详情
// @Tags 房东
// @Produce json
// @Security BearerAuth
// @Param id path int true "民宿ID"
// @Success 200 {object} response.Response{data=hotelService.HotelInfo}
// @Router /host/hotels/{id} [get]
func (h *Handler) GetHostHotel(c *gin.Context) {
	hostID, hotelID, ok := handler.RequireHostAndParseID(c, "民宿")
	if !ok {
		return
	}

	hotel, err := h.hotelService.GetHostHotel(c.Request.Context(), hostID, hotelID)
	handler.MustSucceed(c, err, hotel)
}

// ListHostHotels 获取房东名下的民宿列表
// @Summary 获取房东民宿列表
// @Tags 房东
// @Produce json
// @Security BearerAuth
// @Param page query int false "页码"
// @Param page_size query int false "每页数量"
// @Success 200 {object} response.Response{data=[]hotelService.HotelInfo}
// @Router /host/hotels [get]
func (h *Handler) ListHostHotels(c *gin.Context) {
	hostID, ok := handler.RequireHostID(c)
	if !ok {
		return
	}

	p := handler.BindPagination(c)
	hotels, total, err := h.hotelService.ListHostHotels(c.Request.Context(), hostID, p.Page, p.PageSize)
	handler.MustSucceedPage(c, err, hotels, total, p.Page, p.PageSize)
}

// DeleteHotel 删除民宿（房东）
// @Summary 删除民宿
// @Tags 房东
// @Produce json
// @Security BearerAuth
// @Param id path int true "民宿ID"
// @Success 200 {object} response.Response
// @Router /host/hotels/{id} [delete]
func (h *Handler) DeleteHotel(c *gin.Context) {
	hostID, hotelID, ok := handler.RequireHostAndParseID(c, "民宿")
	if !ok {
		return
	}

	if handler.HandleError(c, h.hotelService.DeleteHotel(c.Request.Context(), hostID, hotelID)) {
		return
	}
	response.Success(c, nil)
}
