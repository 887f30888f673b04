package httpadapter

import (
	"context"
	"log/slog"
	"time"

	application "quorum/contexts/archive/build-registry/application"
	"quorum/contexts/archive/build-registry/application/commands"
	"quorum/contexts/archive/build-registry/application/queries"
	"quorum/contexts/archive/build-registry/domain/entities"
	httptransport "quorum/contexts/archive/build-registry/transport/http"
)

type Handler struct {
	Submit commands.SubmitBuildUseCase
	Edit   commands.EditBuildUseCase
	Builds queries.BuildsUseCase
	Logger *slog.Logger
}

// SubmitBuildHandler godoc
// @Summary Submit a build
// @Description Records a new pending build and announces it on the event bus.
// @Tags build-registry
// @Accept json
// @Produce json
// @Param request body httptransport.SubmitBuildRequest true "Build payload"
// @Success 201 {object} httptransport.BuildResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 500 {object} httptransport.ErrorResponse
// @Router /builds [post]
func (h Handler) SubmitBuildHandler(ctx context.Context, req httptransport.SubmitBuildRequest) (httptransport.BuildResponse, error) {
	logger := application.ResolveLogger(h.Logger)
	logger.Info("build submission request received",
		"event", "http_submit_build_received",
		"module", "archive/build-registry",
		"layer", "transport",
		"submitter_id", req.SubmitterID,
	)

	build, err := h.Submit.Execute(ctx, commands.SubmitBuildCommand{
		Name:        req.Name,
		Description: req.Description,
		SubmitterID: req.SubmitterID,
		Attributes:  req.Attributes,
	})
	if err != nil {
		return httptransport.BuildResponse{}, err
	}
	return httptransport.BuildResponse{Item: mapBuild(build)}, nil
}

// EditBuildHandler godoc
// @Summary Edit a build
// @Description Applies a field diff under the record lock.
// @Tags build-registry
// @Accept json
// @Produce json
// @Param build_id path int true "Build id"
// @Param request body httptransport.EditBuildRequest true "Field diff"
// @Success 200 {object} httptransport.BuildResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Failure 409 {object} httptransport.ErrorResponse
// @Failure 500 {object} httptransport.ErrorResponse
// @Router /builds/{build_id} [patch]
func (h Handler) EditBuildHandler(ctx context.Context, buildID int64, req httptransport.EditBuildRequest) (httptransport.BuildResponse, error) {
	changes := make([]entities.Change, 0, len(req.Changes))
	for _, change := range req.Changes {
		changes = append(changes, entities.Change{
			Field: change.Field,
			From:  change.From,
			To:    change.To,
		})
	}
	build, err := h.Edit.Execute(ctx, commands.EditBuildCommand{
		BuildID: buildID,
		Changes: changes,
	})
	if err != nil {
		return httptransport.BuildResponse{}, err
	}
	return httptransport.BuildResponse{Item: mapBuild(build)}, nil
}

// GetBuildHandler godoc
// @Summary Get a build
// @Description Returns one build by id.
// @Tags build-registry
// @Accept json
// @Produce json
// @Param build_id path int true "Build id"
// @Success 200 {object} httptransport.BuildResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Failure 500 {object} httptransport.ErrorResponse
// @Router /builds/{build_id} [get]
func (h Handler) GetBuildHandler(ctx context.Context, buildID int64) (httptransport.BuildResponse, error) {
	build, err := h.Builds.Get(ctx, queries.GetBuildQuery{BuildID: buildID})
	if err != nil {
		return httptransport.BuildResponse{}, err
	}
	return httptransport.BuildResponse{Item: mapBuild(build)}, nil
}

// ListBuildsHandler godoc
// @Summary List builds
// @Description Returns builds, optionally filtered by status.
// @Tags build-registry
// @Accept json
// @Produce json
// @Param status query string false "Status filter: pending,confirmed,denied"
// @Param limit query int false "Page size (max 50)"
// @Success 200 {object} httptransport.ListBuildsResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 500 {object} httptransport.ErrorResponse
// @Router /builds [get]
func (h Handler) ListBuildsHandler(ctx context.Context, status string, limit int) (httptransport.ListBuildsResponse, error) {
	builds, err := h.Builds.List(ctx, queries.ListBuildsQuery{Status: status, Limit: limit})
	if err != nil {
		return httptransport.ListBuildsResponse{}, err
	}
	items := make([]httptransport.BuildDTO, 0, len(builds))
	for _, build := range builds {
		items = append(items, mapBuild(build))
	}
	return httptransport.ListBuildsResponse{Items: items}, nil
}

func mapBuild(build entities.Build) httptransport.BuildDTO {
	dto := httptransport.BuildDTO{
		BuildID:     build.ID,
		Name:        build.Name,
		Description: build.Description,
		SubmitterID: build.SubmitterID,
		Attributes:  build.Attributes,
		Status:      string(build.Status),
		Locked:      build.IsLocked,
		CreatedAt:   build.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   build.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if build.ConfirmedAt != nil {
		dto.ConfirmedAt = build.ConfirmedAt.UTC().Format(time.RFC3339)
	}
	return dto
}
