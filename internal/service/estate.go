package service

import (
	"context"

	apperrors "github.com/Tavhidjon/RealEstate/internal/errors"
	"github.com/Tavhidjon/RealEstate/internal/model"
	"github.com/Tavhidjon/RealEstate/internal/repository"
)

// BuildingRequest 楼栋创建/更新请求
type BuildingRequest struct {
	Name        string  `json:"name" binding:"required,max=100"`
	Address     string  `json:"address" binding:"required,max=255"`
	Description string  `json:"description"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	FloorsCount int     `json:"floors_count" binding:"gte=0"`
	FlatsCount  int     `json:"flats_count" binding:"gte=0"`
}

// FloorRequest 楼层创建请求
type FloorRequest struct {
	BuildingID  int64 `json:"building_id,string" binding:"required"`
	FloorNumber int   `json:"floor_number" binding:"gte=0"`
}

// FlatRequest 房间创建请求
type FlatRequest struct {
	FloorID int64   `json:"floor_id,string" binding:"required"`
	Number  string  `json:"number" binding:"required,max=20"`
	Area    float64 `json:"area" binding:"gt=0"`
}

// EstateService 楼盘业务
// 写操作要求主体能代表楼栋所属公司（管理员不受限）
type EstateService struct {
	estateRepo  *repository.EstateRepository
	companyRepo *repository.CompanyRepository
}

// NewEstateService 创建楼盘服务
func NewEstateService(estateRepo *repository.EstateRepository, companyRepo *repository.CompanyRepository) *EstateService {
	return &EstateService{estateRepo: estateRepo, companyRepo: companyRepo}
}

// ListCompanies 公司列表
func (s *EstateService) ListCompanies(ctx context.Context) ([]model.Company, error) {
	return s.companyRepo.List(ctx)
}

// GetCompany 公司详情
func (s *EstateService) GetCompany(ctx context.Context, id int64) (*model.Company, error) {
	return s.companyRepo.GetByID(ctx, id)
}

// CreateCompany 创建公司（仅管理员）
func (s *EstateService) CreateCompany(ctx context.Context, principal model.Principal, company *model.Company) error {
	if principal.Kind != model.PrincipalAdmin {
		return apperrors.ErrNotCompanyStaff
	}
	return s.companyRepo.Create(ctx, company)
}

// UpdateCompany 更新公司信息（代表或管理员）
func (s *EstateService) UpdateCompany(ctx context.Context, principal model.Principal, company *model.Company) error {
	if !principal.CanActForCompany(company.ID) {
		return apperrors.ErrNotCompanyStaff
	}
	return s.companyRepo.Update(ctx, company)
}

// CreateBuilding 创建楼栋
func (s *EstateService) CreateBuilding(ctx context.Context, principal model.Principal, companyID int64, req *BuildingRequest) (*model.Building, error) {
	if !principal.CanActForCompany(companyID) {
		return nil, apperrors.ErrNotCompanyStaff
	}
	if _, err := s.companyRepo.GetByID(ctx, companyID); err != nil {
		return nil, err
	}

	b := &model.Building{
		CompanyID:   companyID,
		Name:        req.Name,
		Address:     req.Address,
		Description: req.Description,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		FloorsCount: req.FloorsCount,
		FlatsCount:  req.FlatsCount,
	}
	if err := s.estateRepo.CreateBuilding(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// GetBuilding 楼栋详情
func (s *EstateService) GetBuilding(ctx context.Context, id int64) (*model.Building, error) {
	return s.estateRepo.GetBuilding(ctx, id)
}

// ListBuildings 楼栋列表，companyID 为 0 时返回全部
func (s *EstateService) ListBuildings(ctx context.Context, companyID int64) ([]model.Building, error) {
	return s.estateRepo.ListBuildings(ctx, companyID)
}

// UpdateBuilding 更新楼栋
func (s *EstateService) UpdateBuilding(ctx context.Context, principal model.Principal, id int64, req *BuildingRequest) (*model.Building, error) {
	b, err := s.estateRepo.GetBuilding(ctx, id)
	if err != nil {
		return nil, err
	}
	if !principal.CanActForCompany(b.CompanyID) {
		return nil, apperrors.ErrNotCompanyStaff
	}

	b.Name = req.Name
	b.Address = req.Address
	b.Description = req.Description
	b.Latitude = req.Latitude
	b.Longitude = req.Longitude
	b.FloorsCount = req.FloorsCount
	b.FlatsCount = req.FlatsCount

	if err := s.estateRepo.UpdateBuilding(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// DeleteBuilding 删除楼栋
func (s *EstateService) DeleteBuilding(ctx context.Context, principal model.Principal, id int64) error {
	b, err := s.estateRepo.GetBuilding(ctx, id)
	if err != nil {
		return err
	}
	if !principal.CanActForCompany(b.CompanyID) {
		return apperrors.ErrNotCompanyStaff
	}
	return s.estateRepo.DeleteBuilding(ctx, id)
}

// CreateFloor 创建楼层
func (s *EstateService) CreateFloor(ctx context.Context, principal model.Principal, req *FloorRequest) (*model.Floor, error) {
	companyID, err := s.estateRepo.BuildingOwner(ctx, req.BuildingID)
	if err != nil {
		return nil, err
	}
	if !principal.CanActForCompany(companyID) {
		return nil, apperrors.ErrNotCompanyStaff
	}

	f := &model.Floor{BuildingID: req.BuildingID, FloorNumber: req.FloorNumber}
	if err := s.estateRepo.CreateFloor(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

// ListFloors 楼栋的楼层列表
func (s *EstateService) ListFloors(ctx context.Context, buildingID int64) ([]model.Floor, error) {
	if _, err := s.estateRepo.GetBuilding(ctx, buildingID); err != nil {
		return nil, err
	}
	return s.estateRepo.ListFloors(ctx, buildingID)
}

// DeleteFloor 删除楼层
func (s *EstateService) DeleteFloor(ctx context.Context, principal model.Principal, id int64) error {
	companyID, err := s.estateRepo.FloorOwner(ctx, id)
	if err != nil {
		return err
	}
	if !principal.CanActForCompany(companyID) {
		return apperrors.ErrNotCompanyStaff
	}
	return s.estateRepo.DeleteFloor(ctx, id)
}

// CreateFlat 创建房间
func (s *EstateService) CreateFlat(ctx context.Context, principal model.Principal, req *FlatRequest) (*model.Flat, error) {
	companyID, err := s.estateRepo.FloorOwner(ctx, req.FloorID)
	if err != nil {
		return nil, err
	}
	if !principal.CanActForCompany(companyID) {
		return nil, apperrors.ErrNotCompanyStaff
	}

	f := &model.Flat{FloorID: req.FloorID, Number: req.Number, Area: req.Area}
	if err := s.estateRepo.CreateFlat(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

// ListFlats 楼层的房间列表
func (s *EstateService) ListFlats(ctx context.Context, floorID int64) ([]model.Flat, error) {
	if _, err := s.estateRepo.GetFloor(ctx, floorID); err != nil {
		return nil, err
	}
	return s.estateRepo.ListFlats(ctx, floorID)
}

// DeleteFlat 删除房间
func (s *EstateService) DeleteFlat(ctx context.Context, principal model.Principal, id int64) error {
	flat, err := s.estateRepo.GetFlat(ctx, id)
	if err != nil {
		return err
	}
	companyID, err := s.estateRepo.FloorOwner(ctx, flat.FloorID)
	if err != nil {
		return err
	}
	if !principal.CanActForCompany(companyID) {
		return apperrors.ErrNotCompanyStaff
	}
	return s.estateRepo.DeleteFlat(ctx, id)
}
