package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "github.com/Tavhidjon/RealEstate/internal/errors"
	"github.com/Tavhidjon/RealEstate/internal/middleware"
	"github.com/Tavhidjon/RealEstate/internal/model"
	"github.com/Tavhidjon/RealEstate/internal/service"
	"github.com/Tavhidjon/RealEstate/pkg/response"
)

// EstateHandler 楼盘处理器
type EstateHandler struct {
	estateService *service.EstateService
}

// NewEstateHandler 创建楼盘处理器
func NewEstateHandler(estateService *service.EstateService) *EstateHandler {
	return &EstateHandler{estateService: estateService}
}

// ListCompanies 公司列表
// @Summary      公司列表
// @Tags         楼盘
// @Produce      json
// @Success      200  {object}  response.Response{data=[]model.Company}
// @Router       /companies [get]
func (h *EstateHandler) ListCompanies(c *gin.Context) {
	companies, err := h.estateService.ListCompanies(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, companies)
}

// GetCompany 公司详情
// @Summary      公司详情
// @Tags         楼盘
// @Produce      json
// @Param        id path string true "公司 ID"
// @Success      200  {object}  response.Response{data=model.Company}
// @Failure      200  {object}  response.Response
// @Router       /companies/{id} [get]
func (h *EstateHandler) GetCompany(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	company, err := h.estateService.GetCompany(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, company)
}

// CreateCompany 创建公司
// @Summary      创建公司
// @Description  仅管理员可用
// @Tags         楼盘
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body object{name=string,description=string} true "公司信息"
// @Success      200  {object}  response.Response{data=model.Company}
// @Failure      200  {object}  response.Response
// @Router       /companies [post]
func (h *EstateHandler) CreateCompany(c *gin.Context) {
	var req struct {
		Name        string `json:"name" binding:"required,max=100"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithMsg(c, apperrors.CodeInvalidParams, err.Error())
		return
	}

	company := &model.Company{Name: req.Name, Description: req.Description}
	principal := middleware.GetPrincipal(c)
	if err := h.estateService.CreateCompany(c.Request.Context(), principal, company); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, company)
}

// UpdateCompany 更新公司信息
// @Summary      更新公司信息
// @Description  需要能代表该公司（代表或管理员）
// @Tags         楼盘
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "公司 ID"
// @Param        request body object{name=string,description=string} true "公司信息"
// @Success      200  {object}  response.Response{data=model.Company}
// @Failure      200  {object}  response.Response
// @Router       /companies/{id} [put]
func (h *EstateHandler) UpdateCompany(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Name        string `json:"name" binding:"required,max=100"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithMsg(c, apperrors.CodeInvalidParams, err.Error())
		return
	}

	company, err := h.estateService.GetCompany(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	company.Name = req.Name
	company.Description = req.Description

	principal := middleware.GetPrincipal(c)
	if err := h.estateService.UpdateCompany(c.Request.Context(), principal, company); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, company)
}

// ListBuildings 楼栋列表
// @Summary      楼栋列表
// @Description  可选 company_id 过滤
// @Tags         楼盘
// @Produce      json
// @Param        company_id query string false "公司 ID"
// @Success      200  {object}  response.Response{data=[]model.Building}
// @Router       /buildings [get]
func (h *EstateHandler) ListBuildings(c *gin.Context) {
	var companyID int64
	if v := c.Query("company_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			response.InvalidParams(c)
			return
		}
		companyID = id
	}

	buildings, err := h.estateService.ListBuildings(c.Request.Context(), companyID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, buildings)
}

// GetBuilding 楼栋详情
// @Summary      楼栋详情
// @Tags         楼盘
// @Produce      json
// @Param        id path string true "楼栋 ID"
// @Success      200  {object}  response.Response{data=model.Building}
// @Failure      200  {object}  response.Response
// @Router       /buildings/{id} [get]
func (h *EstateHandler) GetBuilding(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	building, err := h.estateService.GetBuilding(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, building)
}

// CreateBuilding 创建楼栋
// @Summary      创建楼栋
// @Description  需要能代表目标公司（代表或管理员）
// @Tags         楼盘
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "公司 ID"
// @Param        request body service.BuildingRequest true "楼栋信息"
// @Success      200  {object}  response.Response{data=model.Building}
// @Failure      200  {object}  response.Response
// @Router       /companies/{id}/buildings [post]
func (h *EstateHandler) CreateBuilding(c *gin.Context) {
	companyID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req service.BuildingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithMsg(c, apperrors.CodeInvalidParams, err.Error())
		return
	}

	principal := middleware.GetPrincipal(c)
	building, err := h.estateService.CreateBuilding(c.Request.Context(), principal, companyID, &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, building)
}

// UpdateBuilding 更新楼栋
// @Summary      更新楼栋
// @Tags         楼盘
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "楼栋 ID"
// @Param        request body service.BuildingRequest true "楼栋信息"
// @Success      200  {object}  response.Response{data=model.Building}
// @Failure      200  {object}  response.Response
// @Router       /buildings/{id} [put]
func (h *EstateHandler) UpdateBuilding(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req service.BuildingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithMsg(c, apperrors.CodeInvalidParams, err.Error())
		return
	}

	principal := middleware.GetPrincipal(c)
	building, err := h.estateService.UpdateBuilding(c.Request.Context(), principal, id, &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, building)
}

// DeleteBuilding 删除楼栋
// @Summary      删除楼栋
// @Tags         楼盘
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "楼栋 ID"
// @Success      200  {object}  response.Response
// @Failure      200  {object}  response.Response
// @Router       /buildings/{id} [delete]
func (h *EstateHandler) DeleteBuilding(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	principal := middleware.GetPrincipal(c)
	if err := h.estateService.DeleteBuilding(c.Request.Context(), principal, id); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// ListFloors 楼层列表
// @Summary      楼层列表
// @Tags         楼盘
// @Produce      json
// @Param        id path string true "楼栋 ID"
// @Success      200  {object}  response.Response{data=[]model.Floor}
// @Failure      200  {object}  response.Response
// @Router       /buildings/{id}/floors [get]
func (h *EstateHandler) ListFloors(c *gin.Context) {
	buildingID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	floors, err := h.estateService.ListFloors(c.Request.Context(), buildingID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, floors)
}

// CreateFloor 创建楼层
// @Summary      创建楼层
// @Tags         楼盘
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body service.FloorRequest true "楼层信息"
// @Success      200  {object}  response.Response{data=model.Floor}
// @Failure      200  {object}  response.Response
// @Router       /floors [post]
func (h *EstateHandler) CreateFloor(c *gin.Context) {
	var req service.FloorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithMsg(c, apperrors.CodeInvalidParams, err.Error())
		return
	}

	principal := middleware.GetPrincipal(c)
	floor, err := h.estateService.CreateFloor(c.Request.Context(), principal, &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, floor)
}

// DeleteFloor 删除楼层
// @Summary      删除楼层
// @Tags         楼盘
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "楼层 ID"
// @Success      200  {object}  response.Response
// @Failure      200  {object}  response.Response
// @Router       /floors/{id} [delete]
func (h *EstateHandler) DeleteFloor(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	principal := middleware.GetPrincipal(c)
	if err := h.estateService.DeleteFloor(c.Request.Context(), principal, id); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// ListFlats 房间列表
// @Summary      房间列表
// @Tags         楼盘
// @Produce      json
// @Param        id path string true "楼层 ID"
// @Success      200  {object}  response.Response{data=[]model.Flat}
// @Failure      200  {object}  response.Response
// @Router       /floors/{id}/flats [get]
func (h *EstateHandler) ListFlats(c *gin.Context) {
	floorID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	flats, err := h.estateService.ListFlats(c.Request.Context(), floorID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, flats)
}

// CreateFlat 创建房间
// @Summary      创建房间
// @Tags         楼盘
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body service.FlatRequest true "房间信息"
// @Success      200  {object}  response.Response{data=model.Flat}
// @Failure      200  {object}  response.Response
// @Router       /flats [post]
func (h *EstateHandler) CreateFlat(c *gin.Context) {
	var req service.FlatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithMsg(c, apperrors.CodeInvalidParams, err.Error())
		return
	}

	principal := middleware.GetPrincipal(c)
	flat, err := h.estateService.CreateFlat(c.Request.Context(), principal, &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, flat)
}

// DeleteFlat 删除房间
// @Summary      删除房间
// @Tags         楼盘
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "房间 ID"
// @Success      200  {object}  response.Response
// @Failure      200  {object}  response.Response
// @Router       /flats/{id} [delete]
func (h *EstateHandler) DeleteFlat(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	principal := middleware.GetPrincipal(c)
	if err := h.estateService.DeleteFlat(c.Request.Context(), principal, id); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}
