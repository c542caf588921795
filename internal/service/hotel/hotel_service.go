// Package hotel 提供民宿房源服务
package hotel

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/yuewen2025/homestay-backend/internal/common/errors"
	"github.com/yuewen2025/homestay-backend/internal/models"
	"github.com/yuewen2025/homestay-backend/internal/repository"
)

// HotelService 民宿服务
type HotelService struct {
	db          *gorm.DB
	hotelRepo   *repository.HotelRepository
	bookingRepo *repository.BookingRepository
}

// NewHotelService 创建民宿服务
func NewHotelService(db *gorm.DB, hotelRepo *repository.HotelRepository, bookingRepo *repository.BookingRepository) *HotelService {
	return &HotelService{
		db:          db,
		hotelRepo:   hotelRepo,
		bookingRepo: bookingRepo,
	}
}

// HotelListRequest 民宿列表请求
type HotelListRequest struct {
	Page      int    `form:"page" json:"page"`
	PageSize  int    `form:"page_size" json:"page_size"`
	Province  string `form:"province" json:"province"`
	City      string `form:"city" json:"city"`
	District  string `form:"district" json:"district"`
	Keyword   string `form:"keyword" json:"keyword"`
	MinGuests int    `form:"min_guests" json:"min_guests"`
}

// CreateHotelRequest 创建民宿请求
type CreateHotelRequest struct {
	Name              string      `json:"name" binding:"required,max=100"`
	Province          string      `json:"province" binding:"required"`
	City              string      `json:"city" binding:"required"`
	District          string      `json:"district" binding:"required"`
	Address           string      `json:"address" binding:"required"`
	Description       *string     `json:"description,omitempty"`
	MaxGuests         int         `json:"max_guests" binding:"required,min=1"`
	Bedrooms          int         `json:"bedrooms" binding:"required,min=1"`
	Bathrooms         int         `json:"bathrooms" binding:"required,min=1"`
	TotalRooms        int         `json:"total_rooms" binding:"required,min=1"`
	BasePricePerNight float64     `json:"base_price_per_night" binding:"required,gt=0"`
	CleaningFee       float64     `json:"cleaning_fee" binding:"omitempty,gte=0"`
	ServiceFee        float64     `json:"service_fee" binding:"omitempty,gte=0"`
	Amenities         models.JSON `json:"amenities,omitempty"`
}

// UpdateHotelRequest 更新民宿请求
type UpdateHotelRequest struct {
	Name              *string     `json:"name,omitempty"`
	Description       *string     `json:"description,omitempty"`
	MaxGuests         *int        `json:"max_guests,omitempty"`
	Bedrooms          *int        `json:"bedrooms,omitempty"`
	Bathrooms         *int        `json:"bathrooms,omitempty"`
	TotalRooms        *int        `json:"total_rooms,omitempty"`
	BasePricePerNight *float64    `json:"base_price_per_night,omitempty"`
	CleaningFee       *float64    `json:"cleaning_fee,omitempty"`
	ServiceFee        *float64    `json:"service_fee,omitempty"`
	Amenities         models.JSON `json:"amenities,omitempty"`
	IsSuspended       *bool       `json:"is_suspended,omitempty"`
}

// HotelInfo 民宿信息
type HotelInfo struct {
	ID                int64       `json:"id"`
	HostID            int64       `json:"host_id"`
	Name              string      `json:"name"`
	Province          string      `json:"province"`
	City              string      `json:"city"`
	District          string      `json:"district"`
	Address           string      `json:"address"`
	FullAddress       string      `json:"full_address"`
	Description       string      `json:"description,omitempty"`
	MaxGuests         int         `json:"max_guests"`
	Bedrooms          int         `json:"bedrooms"`
	Bathrooms         int         `json:"bathrooms"`
	TotalRooms        int         `json:"total_rooms"`
	BasePricePerNight float64     `json:"base_price_per_night"`
	CleaningFee       float64     `json:"cleaning_fee"`
	ServiceFee        float64     `json:"service_fee"`
	Amenities         []string    `json:"amenities,omitempty"`
	IsApproved        bool        `json:"is_approved"`
	IsSuspended       bool        `json:"is_suspended"`
	CreatedAt         time.Time   `json:"created_at"`
}

// GetHotelList 获取可预订民宿列表（公开）
func (s *HotelService) GetHotelList(ctx context.Context, req *HotelListRequest) ([]*HotelInfo, int64, error) {
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.PageSize <= 0 {
		req.PageSize = 10
	}
	if req.PageSize > 50 {
		req.PageSize = 50
	}
	offset := (req.Page - 1) * req.PageSize

	// 关键词搜索（仅检索可预订房源）
	if req.Keyword != "" {
		hotels, total, err := s.hotelRepo.Search(ctx, req.Keyword, offset, req.PageSize)
		if err != nil {
			return nil, 0, errors.ErrDatabaseError.WithError(err)
		}
		return s.convertHotelList(hotels, false), total, nil
	}

	filters := map[string]interface{}{}
	if req.Province != "" {
		filters["province"] = req.Province
	}
	if req.City != "" {
		filters["city"] = req.City
	}
	if req.District != "" {
		filters["district"] = req.District
	}
	if req.MinGuests > 0 {
		filters["min_guests"] = req.MinGuests
	}

	hotels, total, err := s.hotelRepo.ListBookable(ctx, offset, req.PageSize, filters)
	if err != nil {
		return nil, 0, errors.ErrDatabaseError.WithError(err)
	}
	return s.convertHotelList(hotels, false), total, nil
}

// GetHotelDetail 获取民宿详情（公开，仅可预订房源可见）
func (s *HotelService) GetHotelDetail(ctx context.Context, hotelID int64) (*HotelInfo, error) {
	hotel, err := s.hotelRepo.GetByID(ctx, hotelID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrHotelNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	// 未过审或已停用的房源对公众不可见
	if !hotel.IsBookable() {
		return nil, errors.ErrHotelNotFound
	}
	return s.convertHotelInfo(hotel, false), nil
}

// GetCities 获取有可预订房源的城市列表
func (s *HotelService) GetCities(ctx context.Context) ([]string, error) {
	cities, err := s.hotelRepo.GetCities(ctx)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return cities, nil
}

// CreateHotel 创建民宿（房东），新房源默认未过审不可预订
func (s *HotelService) CreateHotel(ctx context.Context, hostID int64, req *CreateHotelRequest) (*HotelInfo, error) {
	hotel := &models.Hotel{
		HostID:            hostID,
		Name:              req.Name,
		Province:          req.Province,
		City:              req.City,
		District:          req.District,
		Address:           req.Address,
		Description:       req.Description,
		MaxGuests:         req.MaxGuests,
		Bedrooms:          req.Bedrooms,
		Bathrooms:         req.Bathrooms,
		TotalRooms:        req.TotalRooms,
		BasePricePerNight: req.BasePricePerNight,
		CleaningFee:       req.CleaningFee,
		ServiceFee:        req.ServiceFee,
		Amenities:         req.Amenities,
	}
	if err := s.hotelRepo.Create(ctx, hotel); err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return s.convertHotelInfo(hotel, true), nil
}

// UpdateHotel 更新民宿（房东，仅限本人房源）
// 价格与费用调整不影响已生成的预订价格快照
func (s *HotelService) UpdateHotel(ctx context.Context, hostID, hotelID int64, req *UpdateHotelRequest) (*HotelInfo, error) {
	hotel, err := s.getOwnedHotel(ctx, hostID, hotelID)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.MaxGuests != nil {
		if *req.MaxGuests < 1 {
			return nil, errors.ErrInvalidParams.WithMessage("最大入住人数不能小于1")
		}
		fields["max_guests"] = *req.MaxGuests
	}
	if req.Bedrooms != nil {
		fields["bedrooms"] = *req.Bedrooms
	}
	if req.Bathrooms != nil {
		fields["bathrooms"] = *req.Bathrooms
	}
	if req.TotalRooms != nil {
		if *req.TotalRooms < 1 {
			return nil, errors.ErrInvalidParams.WithMessage("房间总数不能小于1")
		}
		fields["total_rooms"] = *req.TotalRooms
	}
	if req.BasePricePerNight != nil {
		if *req.BasePricePerNight <= 0 {
			return nil, errors.ErrInvalidParams.WithMessage("每晚基础价必须大于0")
		}
		fields["base_price_per_night"] = *req.BasePricePerNight
	}
	if req.CleaningFee != nil {
		fields["cleaning_fee"] = *req.CleaningFee
	}
	if req.ServiceFee != nil {
		fields["service_fee"] = *req.ServiceFee
	}
	if req.Amenities != nil {
		fields["amenities"] = req.Amenities
	}
	if req.IsSuspended != nil {
		fields["is_suspended"] = *req.IsSuspended
	}

	if len(fields) > 0 {
		if err := s.hotelRepo.UpdateFields(ctx, hotel.ID, fields); err != nil {
			return nil, errors.ErrDatabaseError.WithError(err)
		}
	}

	updated, err := s.hotelRepo.GetByID(ctx, hotel.ID)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return s.convertHotelInfo(updated, true), nil
}

// GetHostHotel 获取房东本人的民宿详情
func (s *HotelService) GetHostHotel(ctx context.Context, hostID, hotelID int64) (*HotelInfo, error) {
	hotel, err := s.getOwnedHotel(ctx, hostID, hotelID)
	if err != nil {
		return nil, err
	}
	return s.convertHotelInfo(hotel, true), nil
}

// ListHostHotels 获取房东名下的民宿列表
func (s *HotelService) ListHostHotels(ctx context.Context, hostID int64, page, pageSize int) ([]*HotelInfo, int64, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 10
	}
	offset := (page - 1) * pageSize

	hotels, total, err := s.hotelRepo.ListByHost(ctx, hostID, offset, pageSize)
	if err != nil {
		return nil, 0, errors.ErrDatabaseError.WithError(err)
	}
	return s.convertHotelList(hotels, true), total, nil
}

// DeleteHotel 删除民宿（房东，存在未完结预订时拒绝）
func (s *HotelService) DeleteHotel(ctx context.Context, hostID, hotelID int64) error {
	hotel, err := s.getOwnedHotel(ctx, hostID, hotelID)
	if err != nil {
		return err
	}

	active, err := s.bookingRepo.CountActiveByHotel(ctx, hotel.ID)
	if err != nil {
		return errors.ErrDatabaseError.WithError(err)
	}
	if active > 0 {
		return errors.ErrInvalidParams.WithMessage("该房源仍有未完结预订，无法删除")
	}

	if err := s.hotelRepo.Delete(ctx, hotel.ID); err != nil {
		return errors.ErrDatabaseError.WithError(err)
	}
	return nil
}

// getOwnedHotel 获取房东本人的民宿
func (s *HotelService) getOwnedHotel(ctx context.Context, hostID, hotelID int64) (*models.Hotel, error) {
	hotel, err := s.hotelRepo.GetByID(ctx, hotelID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrHotelNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	if hotel.HostID != hostID {
		return nil, errors.ErrNotHotelOwner
	}
	return hotel, nil
}

// convertHotelList 转换民宿列表
func (s *HotelService) convertHotelList(hotels []*models.Hotel, owner bool) []*HotelInfo {
	var result []*HotelInfo
	for _, hotel := range hotels {
		result = append(result, s.convertHotelInfo(hotel, owner))
	}
	return result
}

// convertHotelInfo 转换民宿信息
// owner 为真时返回审核与停用状态，公开视图不含这些字段含义上也恒为可订
func (s *HotelService) convertHotelInfo(hotel *models.Hotel, owner bool) *HotelInfo {
	info := &HotelInfo{
		ID:                hotel.ID,
		HostID:            hotel.HostID,
		Name:              hotel.Name,
		Province:          hotel.Province,
		City:              hotel.City,
		District:          hotel.District,
		Address:           hotel.Address,
		FullAddress:       hotel.Province + hotel.City + hotel.District + hotel.Address,
		MaxGuests:         hotel.MaxGuests,
		Bedrooms:          hotel.Bedrooms,
		Bathrooms:         hotel.Bathrooms,
		TotalRooms:        hotel.TotalRooms,
		BasePricePerNight: hotel.BasePricePerNight,
		CleaningFee:       hotel.CleaningFee,
		ServiceFee:        hotel.ServiceFee,
		CreatedAt:         hotel.CreatedAt,
	}
	if hotel.Description != nil {
		info.Description = *hotel.Description
	}
	if hotel.Amenities != nil {
		info.Amenities = jsonToStringSlice(hotel.Amenities)
	}
	if owner {
		info.IsApproved = hotel.IsApproved
		info.IsSuspended = hotel.IsSuspended
	} else {
		info.IsApproved = true
		info.IsSuspended = false
	}
	return info
}

// jsonToStringSlice 将 JSON map 的字符串值转换为切片
func jsonToStringSlice(j models.JSON) []string {
	if j == nil {
		return nil
	}
	var result []string
	for _, v := range j {
		if s, ok := v.(string); ok {
			result = append(result, s)
		}
	}
	return result
}
