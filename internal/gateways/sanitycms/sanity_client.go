package sanitycms

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/skillgrove/skillgrove_app/internal/apperrors"
	"github.com/skillgrove/skillgrove_app/internal/core/domain"
	portssvc "github.com/skillgrove/skillgrove_app/internal/core/ports/services"
	"github.com/skillgrove/skillgrove_app/internal/platform/config"
)

// draftCourseQuery is the GROQ query for one course document by slug.
const draftCourseQuery = `*[_type == "course" && slug.current == $slug][0]{_id, "slug": slug.current, title, summary, body, sortOrder}`

type sanityClient struct {
	httpClient *http.Client
	queryURL   string
	apiToken   string
}

// courseDocument is the shape of a course document in the CMS.
type courseDocument struct {
	ID        string `json:"_id"`
	Slug      string `json:"slug"`
	Title     string `json:"title"`
	Summary   string `json:"summary"`
	Body      string `json:"body"`
	SortOrder int    `json:"sortOrder"`
}

type queryResponse struct {
	Result *courseDocument `json:"result"`
}

// NewSanityCMS creates the headless CMS reader used for admin draft previews.
func NewSanityCMS(cfg *config.Config) portssvc.CourseCMS {
	queryURL := fmt.Sprintf("https://%s.api.sanity.io/v%s/data/query/%s",
		cfg.SanityProjectID, cfg.SanityAPIVersion, cfg.SanityDataset)
	return &sanityClient{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		queryURL:   queryURL,
		apiToken:   cfg.SanityAPIToken,
	}
}

// Ensure sanityClient implements portssvc.CourseCMS
var _ portssvc.CourseCMS = (*sanityClient)(nil)

func (c *sanityClient) FetchDraftCourse(ctx context.Context, slug string) (*domain.Course, error) {
	slugParam, err := json.Marshal(slug)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to encode slug parameter", err)
	}

	params := url.Values{}
	params.Set("query", draftCourseQuery)
	params.Set("$slug", string(slugParam))
	// Drafts are only visible through the previewDrafts perspective.
	params.Set("perspective", "previewDrafts")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.queryURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to build CMS request", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.NewAppError(502, "failed to query CMS", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, apperrors.NewAppError(502, fmt.Sprintf("CMS query returned status %d: %s", resp.StatusCode, string(body)), nil)
	}

	var decoded queryResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, apperrors.NewAppError(502, "failed to decode CMS response", err)
	}
	if decoded.Result == nil {
		return nil, apperrors.ErrNotFound
	}

	doc := decoded.Result
	return &domain.Course{
		CourseID:    doc.ID,
		Slug:        doc.Slug,
		Title:       doc.Title,
		Summary:     doc.Summary,
		Body:        doc.Body,
		IsPublished: false,
		SortOrder:   doc.SortOrder,
	}, nil
}
