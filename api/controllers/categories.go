package controllers

import (
	"net/http"

	"github.com/sakuapp/saku-backend/api/middleware"
	"github.com/sakuapp/saku-backend/api/responses"
	"github.com/sakuapp/saku-backend/api/validators"
	"github.com/sakuapp/saku-backend/internal/categories"
	"github.com/sakuapp/saku-backend/pkg/db/models"
	"github.com/sakuapp/saku-backend/pkg/enums"
	"github.com/sakuapp/saku-backend/pkg/logger"
)

type createCategoryRequest struct {
	Name string `json:"name" validate:"required"`
	Type string `json:"type" validate:"required,oneof=income expense"`
}

type categoryResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

func toCategoryResponse(category models.Category) categoryResponse {
	return categoryResponse{
		ID:   category.ID.String(),
		Name: category.Name,
		Type: string(category.Type),
	}
}

func ListCategories(svc categories.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		ownerID := middleware.OwnerIDFromContext(ctx)

		rows, err := svc.ListCategories(ctx, ownerID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		out := make([]categoryResponse, 0, len(rows))
		for _, category := range rows {
			out = append(out, toCategoryResponse(category))
		}
		responses.WriteSuccess(w, out)
	}
}

func CreateCategory(svc categories.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		ownerID := middleware.OwnerIDFromContext(ctx)

		var req createCategoryRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		category, err := svc.CreateCategory(ctx, ownerID, categories.CreateCategoryInput{
			Name: req.Name,
			Type: enums.TransactionType(req.Type),
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, toCategoryResponse(*category))
	}
}

func DeleteCategory(svc categories.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		ownerID := middleware.OwnerIDFromContext(ctx)

		categoryID, err := validators.ParseUUIDParam(r, "categoryId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if err := svc.DeleteCategory(ctx, ownerID, categoryID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
