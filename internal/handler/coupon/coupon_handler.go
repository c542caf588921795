// Package coupon 提供优惠券相关的 HTTP Handler
package coupon

import (
	"github.com/gin-gonic/gin"

	"github.com/yuewen2025/homestay-backend/internal/common/handler"
	"github.com/yuewen2025/homestay-backend/internal/common/response"
	couponService "github.com/yuewen2025/homestay-backend/internal/service/coupon"
)

// Handler 优惠券处理器
type Handler struct {
	couponService *couponService.CouponService
}

// NewHandler 创建优惠券处理器
func NewHandler(couponSvc *couponService.CouponService) *Handler {
	return &Handler{
		couponService: couponSvc,
	}
}

// CreateCoupon 创建优惠券（房东）
// @Summary 创建优惠券
// @Tags 房东
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "民宿ID"
// @Param request body couponService.CreateCouponRequest true "请求参数"
// @Success 200 {object} response.Response{data=couponService.CouponInfo}
// @Router /host/hotels/{id}/coupons [post]
func (h *Handler) CreateCoupon(c *gin.Context) {
	hostID, hotelID, ok := handler.RequireHostAndParseID(c, "民宿")
	if !ok {
		return
	}

	var req couponService.CreateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	coupon, err := h.couponService.CreateCoupon(c.Request.Context(), hostID, hotelID, &req)
	handler.MustSucceed(c, err, coupon)
}

// ListHotelCoupons 获取民宿的优惠券列表（房东）
// @Summary 获取民宿优惠券列表
// @Tags 房东
// @Produce json
// @Security BearerAuth
// @Param id path int true "民宿ID"
// @Param page query int false "页码"
// @Param page_size query int false "每页数量"
// @Success 200 {object} response.Response{data=[]couponService.CouponInfo}
// @Router /host/hotels/{id}/coupons [get]
func (h *Handler) ListHotelCoupons(c *gin.Context) {
	hostID, hotelID, ok := handler.RequireHostAndParseID(c, "民宿")
	if !ok {
		return
	}

	p := handler.BindPagination(c)
	coupons, total, err := h.couponService.ListHotelCoupons(c.Request.Context(), hostID, hotelID, p.Page, p.PageSize)
	handler.MustSucceedPage(c, err, coupons, total, p.Page, p.PageSize)
}

// ListUsableCoupons 获取民宿当前可用的优惠券列表（房客）
// @Summary 获取民宿可用优惠券
// @Tags 民宿
// @Produce json
// @Param id path int true "民宿ID"
// @Param page query int false "页码"
// @Param page_size query int false "每页数量"
// @Success 200 {object} response.Response{data=[]couponService.CouponInfo}
// @Router /hotels/{id}/coupons [get]
func (h *Handler) ListUsableCoupons(c *gin.Context) {
	hotelID, ok := handler.ParseID(c, "民宿")
	if !ok {
		return
	}

	p := handler.BindPagination(c)
	coupons, total, err := h.couponService.ListUsableCoupons(c.Request.Context(), hotelID, p.Page, p.PageSize)
	handler.MustSucceedPage(c, err, coupons, total, p.Page, p.PageSize)
}

// GetCoupon 获取优惠券详情（房东）
// @Summary 获取优惠券详情
// @Tags 房东
// @Produce json
// @Security BearerAuth
// @Param id path int true "优惠券ID"
// @Success 200 {object} response.Response{data=couponService.CouponInfo}
// @Router /host/coupons/{id} [get]
func (h *Handler) GetCoupon(c *gin.Context) {
	hostID, couponID, ok := handler.RequireHostAndParseID(c, "优惠券")
	if !ok {
		return
	}

	coupon, err := h.couponService.GetCoupon(c.Request.Context(), hostID, couponID)
	handler.MustSucceed(c, err, coupon)
}

// UpdateCoupon 更新优惠券（房东）
// @Summary 更新优惠券
// @Tags 房东
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "优惠券ID"
// @Param request body couponService.UpdateCouponRequest true "请求参数"
// @Success 200 {object} response.Response{data=couponService.CouponInfo}
// @Router /host/coupons/{id} [put]
func (h *Handler) UpdateCoupon(c *gin.Context) {
	hostID, couponID, ok := handler.RequireHostAndParseID(c, "优惠券")
	if !ok {
		return
	}

	var req couponService.UpdateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	coupon, err := h.couponService.UpdateCoupon(c.Request.Context(), hostID, couponID, &req)
	handler.MustSucceed(c, err, coupon)
}

// DeleteCoupon 删除优惠券（房东）
// @Summary 删除优惠券
// @Tags 房东
// @Produce json
// @Security BearerAuth
// @Param id path int true "优惠券ID"
// @Success 200 {object} response.Response
// @Router /host/coupons/{id} [delete]
func (h *Handler) DeleteCoupon(c *gin.Context) {
	hostID, couponID, ok := handler.RequireHostAndParseID(c, "优惠券")
	if !ok {
		return
	}

	if handler.HandleError(c, h.couponService.DeleteCoupon(c.Request.Context(), hostID, couponID)) {
		return
	}
	response.Success(c, nil)
}
