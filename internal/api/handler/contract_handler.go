package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/gigwork/contracts-api/internal/core/domain"
	"github.com/gigwork/contracts-api/internal/core/ports"
)

// ContractHandler handles HTTP requests for contract lookups.
type ContractHandler struct {
	service ports.ContractService
}

func NewContractHandler(service ports.ContractService) *ContractHandler {
	return &ContractHandler{service: service}
}

type contractListResponse struct {
	Contracts []*domain.Contract `json:"contracts"`
}

// Get handles GET /v1/contracts/:id.
//
// @Summary      Get a contract by id
// @Description  Returns the contract only when the caller is one of its parties.
// @Tags         contracts
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Contract identifier"
// @Success      200  {object}  domain.Contract
// @Failure      404  {object}  map[string]string
// @Router       /v1/contracts/{id} [get]
func (h *ContractHandler) Get(c echo.Context) error {
	callerID, err := ctxProfile(c)
	if err != nil {
		return err
	}

	contract, err := h.service.GetContract(c.Request().Context(), ports.GetContractInput{
		ContractID:      c.Param("id"),
		CallerProfileID: callerID,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, contract)
}

// List handles GET /v1/contracts.
//
// @Summary      List the caller's contracts
// @Description  Returns the caller's non-terminated contracts, either side of the relationship.
// @Tags         contracts
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  contractListResponse
// @Router       /v1/contracts [get]
func (h *ContractHandler) List(c echo.Context) error {
	callerID, err := ctxProfile(c)
	if err != nil {
		return err
	}

	contracts, err := h.service.ListContracts(c.Request().Context(), callerID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, contractListResponse{Contracts: contracts})
}
