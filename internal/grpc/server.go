package grpc

import (
	"context"
	"regexp"

	"github.com/rs/zerolog"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/titulkysubs/titulkysubs/internal/config"
	"github.com/titulkysubs/titulkysubs/internal/models"
)

var externalIDPattern = regexp.MustCompile(`^tt\d+$`)

// SubtitleService answers subtitle requests.
type SubtitleService interface {
	GetSubtitles(ctx context.Context, contentType, externalID string) models.SubtitlesResponse
}

// server implements SubtitleServiceServer on top of the pipeline
type server struct {
	service SubtitleService
	logger  zerolog.Logger
}

// NewServer creates a new gRPC server instance
func NewServer(service SubtitleService) SubtitleServiceServer {
	return &server{
		service: service,
		logger:  config.GetLogger().With().Str("component", "grpc").Logger(),
	}
}

// GetSubtitles implements SubtitleServiceServer.GetSubtitles
func (s *server) GetSubtitles(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	contentType := req.GetFields()["type"].GetStringValue()
	if contentType == "" {
		contentType = "movie"
	}
	externalID := req.GetFields()["id"].GetStringValue()
	s.logger.Debug().Str("type", contentType).Str("id", externalID).Msg("GetSubtitles called")

	if !externalIDPattern.MatchString(externalID) {
		return nil, invalidArgument("id", "must be an IMDb id such as tt0133093")
	}

	resp := s.service.GetSubtitles(ctx, contentType, externalID)

	out, err := toStruct(resp)
	if err != nil {
		s.logger.Error().Err(err).Str("id", externalID).Msg("Failed to encode response")
		return nil, status.Errorf(codes.Internal, "failed to encode response: %v", err)
	}
	s.logger.Debug().Str("id", externalID).Int("count", len(resp.Subtitles)).Msg("GetSubtitles completed")
	return out, nil
}

func invalidArgument(field, description string) error {
	st := status.New(codes.InvalidArgument, "invalid "+field)
	detailed, err := st.WithDetails(&errdetails.BadRequest{
		FieldViolations: []*errdetails.BadRequest_FieldViolation{
			{Field: field, Description: description},
		},
	})
	if err != nil {
		return st.Err()
	}
	return detailed.Err()
}

func toStruct(resp models.SubtitlesResponse) (*structpb.Struct, error) {
	subtitles := make([]any, len(resp.Subtitles))
	for i, sub := range resp.Subtitles {
		subtitles[i] = map[string]any{
			"id":   sub.ID,
			"url":  sub.URL,
			"lang": sub.Lang,
		}
	}
	return structpb.NewStruct(map[string]any{"subtitles": subtitles})
}

// FromStruct decodes a GetSubtitles response.
func FromStruct(out *structpb.Struct) models.SubtitlesResponse {
	resp := models.EmptySubtitles()
	for _, value := range out.GetFields()["subtitles"].GetListValue().GetValues() {
		fields := value.GetStructValue().GetFields()
		resp.Subtitles = append(resp.Subtitles, models.Subtitle{
			ID:   fields["id"].GetStringValue(),
			URL:  fields["url"].GetStringValue(),
			Lang: fields["lang"].GetStringValue(),
		})
	}
	return resp
}
