package http

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/polylab/thegallery/internal/errors"
	"github.com/polylab/thegallery/internal/imageloader"
	"github.com/polylab/thegallery/internal/model"
	"github.com/polylab/thegallery/pkg/util"
)

func (s *Service) initRouter() {
	s.initBaseRouter()
	s.initMediaFileRouter()
	s.initAPIRouter()
}

func (s *Service) initBaseRouter() {
	s.router.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	s.router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	})
}

func (s *Service) initMediaFileRouter() {
	files := s.router.Group("/", s.requireMediaAccess())
	{
		files.GET("/image/:id", s.handleImage)
		files.GET("/thumb/:id", s.handleThumb)
	}
}

func (s *Service) initAPIRouter() {
	api := s.router.Group("/api/v1")
	{
		api.GET("/permission", s.handlePermission)
		api.POST("/import", s.handleImport)

		api.GET("/favorites", s.handleFavorites)
		api.POST("/favorites/:id/toggle", s.handleToggleFavorite)

		api.GET("/albums", s.handleAlbums)
		api.POST("/albums", s.handleCreateAlbum)
		api.GET("/albums/:id/items", s.handleAlbumItems)
		api.PUT("/albums/:id/items/:mediaId", s.handleAddToAlbum)
		api.DELETE("/albums/:id/items/:mediaId", s.handleRemoveFromAlbum)

		// The cache exists for exactly the moments the library is
		// unreachable, so it is never behind the media gate.
		api.GET("/media/cached", s.handleCachedMedia)

		media := api.Group("/media", s.requireMediaAccess())
		{
			media.GET("", s.handleMedia)
			media.GET("/stream", s.handleMediaStream)
			media.GET("/:id", s.handleMediaItem)
		}
	}
}

// mediaQuery is the filter and paging surface of the media listing routes.
type mediaQuery struct {
	Page          int    `form:"page"`
	PageSize      int    `form:"pageSize"`
	FavoritesOnly bool   `form:"favoritesOnly"`
	AlbumID       *int64 `form:"albumId"`
	Search        string `form:"search"`
	Sort          string `form:"sort"`
}

func (q mediaQuery) filter() model.Filter {
	return model.Filter{
		ShowFavoritesOnly: q.FavoritesOnly,
		AlbumID:           q.AlbumID,
		SearchQuery:       q.Search,
		SortOrder:         model.SortOrder(q.Sort),
	}
}

func (s *Service) handlePermission(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"state": s.gallery.Repository().PermissionState(),
	})
}

func (s *Service) handleMedia(c *gin.Context) {
	q := mediaQuery{}
	if err := c.BindQuery(&q); err != nil {
		errors.Err(c, err)
		return
	}
	if q.Page < 0 {
		q.Page = 0
	}

	page, err := s.gallery.Repository().LoadPage(c.Request.Context(), q.filter(), q.Page, q.PageSize)
	if err != nil {
		errors.Err(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

func (s *Service) handleMediaItem(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		errors.Err(c, errors.InvalidArg("id"))
		return
	}

	item, err := s.gallery.Repository().Lookup(c.Request.Context(), id)
	if err != nil {
		errors.Err(c, err)
		return
	}

	c.JSON(http.StatusOK, item)
}

func (s *Service) handleCachedMedia(c *gin.Context) {
	since, ok := util.ParseSince(c.DefaultQuery("since", "all"))
	if !ok {
		errors.Err(c, errors.InvalidArg("since"))
		return
	}

	entries, err := s.gallery.Repository().CachedMedia(c.Request.Context(), since)
	if err != nil {
		errors.Err(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": entries})
}

// handleMediaStream serves the paged listing as server-sent events. Pages
// advance automatically until the listing is exhausted, a write invalidates
// the stream, or maxPages is reached.
func (s *Service) handleMediaStream(c *gin.Context) {
	q := mediaQuery{}
	if err := c.BindQuery(&q); err != nil {
		errors.Err(c, err)
		return
	}

	maxPages := s.conf.GetPrefetchDistance()
	if v := c.Query("maxPages"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			errors.Err(c, errors.InvalidArg("maxPages"))
			return
		}
		maxPages = n
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	stream := s.gallery.Repository().MediaStream(c.Request.Context(), q.filter())
	defer stream.Close()

	pages := 0
	for res := range stream.C {
		switch res.State {
		case model.ResultLoading:
			c.SSEvent("loading", gin.H{"page": pages})
		case model.ResultSuccess:
			c.SSEvent("page", res.Data)
			pages++
			if !res.Data.HasMore || pages >= maxPages {
				c.SSEvent("end", gin.H{"pages": pages})
				c.Writer.Flush()
				return
			}
			stream.LoadMore()
		case model.ResultError:
			c.SSEvent("error", gin.H{"error": res.Err.Error()})
			c.Writer.Flush()
			return
		}
		c.Writer.Flush()
	}

	// The stream closed without a terminal page: a library write invalidated
	// it. The client reopens to observe the fresh listing.
	c.SSEvent("invalidated", gin.H{"pages": pages})
	c.Writer.Flush()
}

func (s *Service) handleFavorites(c *gin.Context) {
	ids, err := s.gallery.Repository().FavoriteIDs(c.Request.Context())
	if err != nil {
		errors.Err(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ids": ids})
}

func (s *Service) handleToggleFavorite(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		errors.Err(c, errors.InvalidArg("id"))
		return
	}

	favorite, err := s.gallery.Repository().ToggleFavorite(c.Request.Context(), id)
	if err != nil {
		errors.Err(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"mediaId": id, "favorite": favorite})
}

func (s *Service) handleAlbums(c *gin.Context) {
	albums, err := s.gallery.Repository().AlbumsOnce(c.Request.Context())
	if err != nil {
		errors.Err(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"albums": albums})
}

func (s *Service) handleCreateAlbum(c *gin.Context) {
	req := struct {
		Name string `json:"name"`
	}{}
	if err := c.BindJSON(&req); err != nil {
		errors.Err(c, err)
		return
	}

	id, err := s.gallery.Repository().CreateAlbum(c.Request.Context(), req.Name)
	if err != nil {
		errors.Err(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": id, "name": req.Name})
}

func (s *Service) handleAlbumItems(c *gin.Context) {
	albumID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		errors.Err(c, errors.InvalidArg("id"))
		return
	}

	items, err := s.gallery.Repository().AlbumMedia(c.Request.Context(), albumID)
	if err != nil {
		errors.Err(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (s *Service) albumItemParams(c *gin.Context) (int64, int64, bool) {
	albumID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		errors.Err(c, errors.InvalidArg("id"))
		return 0, 0, false
	}
	mediaID, err := strconv.ParseInt(c.Param("mediaId"), 10, 64)
	if err != nil {
		errors.Err(c, errors.InvalidArg("mediaId"))
		return 0, 0, false
	}
	return albumID, mediaID, true
}

func (s *Service) handleAddToAlbum(c *gin.Context) {
	albumID, mediaID, ok := s.albumItemParams(c)
	if !ok {
		return
	}

	if err := s.gallery.Repository().AddToAlbum(c.Request.Context(), albumID, mediaID); err != nil {
		errors.Err(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"albumId": albumID, "mediaId": mediaID})
}

func (s *Service) handleRemoveFromAlbum(c *gin.Context) {
	albumID, mediaID, ok := s.albumItemParams(c)
	if !ok {
		return
	}

	if err := s.gallery.Repository().RemoveFromAlbum(c.Request.Context(), albumID, mediaID); err != nil {
		errors.Err(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Service) handleImport(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		errors.Err(c, errors.InvalidArg("file"))
		return
	}

	src, err := file.Open()
	if err != nil {
		errors.Err(c, errors.InvalidArg("file"))
		return
	}
	defer src.Close()

	path, err := s.gallery.Repository().ImportCapturedImage(c.Request.Context(), s.gallery.MediaDir(), src)
	if err != nil {
		errors.Err(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"path": path})
}

func (s *Service) handleImage(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		errors.Err(c, errors.InvalidArg("id"))
		return
	}

	item, err := s.gallery.Repository().Lookup(c.Request.Context(), id)
	if err != nil {
		errors.Err(c, err)
		return
	}

	c.Header("Content-Type", item.MimeType)
	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", item.DisplayName))
	c.File(item.Locator)
}

func (s *Service) handleThumb(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		errors.Err(c, errors.InvalidArg("id"))
		return
	}

	width, err := strconv.Atoi(c.DefaultQuery("w", "256"))
	if err != nil {
		errors.Err(c, errors.InvalidArg("w"))
		return
	}
	height, err := strconv.Atoi(c.DefaultQuery("h", "256"))
	if err != nil {
		errors.Err(c, errors.InvalidArg("h"))
		return
	}

	mode := imageloader.FitMode(c.DefaultQuery("fit", string(imageloader.FitCover)))

	item, err := s.gallery.Repository().Lookup(c.Request.Context(), id)
	if err != nil {
		errors.Err(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	path, err := s.gallery.Loader().Thumbnail(ctx, item.Locator, width, height, mode)
	if err != nil {
		errors.Err(c, err)
		return
	}

	c.Header("Content-Type", "image/jpeg")
	c.Header("Cache-Control", "public, max-age=86400")
	c.File(path)
}
