package api

import (
	restfulspec "github.com/emicklei/go-restful-openapi/v2"
	"github.com/emicklei/go-restful/v3"

	"github.com/efebarandurmaz/ragpipe/internal/api/middleware"
)

func RegisterRoutes(container *restful.Container, handler *Handler) {
	ws := new(restful.WebService)

	ws.
		Path("/api/v1").
		Consumes(restful.MIME_JSON).
		Produces(restful.MIME_JSON)

	// Health endpoint
	ws.
		Route(ws.GET("health").
			To(handler.Health).
			Doc("Health check").
			Metadata(restfulspec.KeyOpenAPITags, []string{"health"}).
			Writes(HealthResponse{}).
			Returns(200, "OK", HealthResponse{}))

	ws.
		Route(ws.POST("/index").
			To(handler.Index).
			Doc("Index a web page into the vector store").
			Metadata(restfulspec.KeyOpenAPITags, []string{"index"}).
			Reads(IndexRequest{}).
			Writes(IndexResponse{}).
			Returns(200, "OK", IndexResponse{}).
			Returns(400, "Bad Request", middleware.ErrorResponse{}).
			Returns(502, "Upstream Failure", middleware.ErrorResponse{}).
			Returns(500, "Internal Server Error", middleware.ErrorResponse{}))

	ws.
		Route(ws.POST("/ask").
			To(handler.Ask).
			Doc("Answer a question from indexed content").
			Metadata(restfulspec.KeyOpenAPITags, []string{"ask"}).
			Reads(AskRequest{}).
			Writes(AskResponse{}).
			Returns(200, "OK", AskResponse{}).
			Returns(400, "Bad Request", middleware.ErrorResponse{}).
			Returns(502, "Upstream Failure", middleware.ErrorResponse{}).
			Returns(500, "Internal Server Error", middleware.ErrorResponse{}))

	container.Add(ws)
}
