package web

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"zenbox/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
)

// AvatarFallback is served when an avatar cannot be fetched
const AvatarFallback = "/assets/avatar.svg"

const maxAvatarBytes = 2 << 20

// AvatarImage is a resized avatar ready to serve
type AvatarImage struct {
	data        []byte
	contentType string
}

// AvatarHandler proxies sender avatars from allow-listed hosts, shrinking
// them to the list size and caching the result in memory.
type AvatarHandler struct {
	allowed map[string]bool
	size    uint
	ttl     time.Duration
	cache   *utils.Cache[AvatarImage]
	client  *fasthttp.Client
	timeout time.Duration
}

func NewAvatarHandler(allowedHosts []string, size uint, ttl time.Duration, cache *utils.Cache[AvatarImage]) *AvatarHandler {
	allowed := make(map[string]bool, len(allowedHosts))
	for _, host := range allowedHosts {
		allowed[strings.ToLower(host)] = true
	}
	return &AvatarHandler{
		allowed: allowed,
		size:    size,
		ttl:     ttl,
		cache:   cache,
		client: &fasthttp.Client{
			Name:                "zenbox-avatar",
			MaxResponseBodySize: maxAvatarBytes,
		},
		timeout: 5 * time.Second,
	}
}

// NewAvatarCache creates the cache AvatarHandler stores thumbnails in
func NewAvatarCache() *utils.Cache[AvatarImage] {
	return utils.NewCache[AvatarImage](10 * time.Minute)
}

// HandleAvatar serves ?src= resized. Anything that goes wrong falls back
// to the placeholder image.
func (h *AvatarHandler) HandleAvatar(c *fiber.Ctx) error {
	src := c.Query("src")
	if !h.Allowed(src) {
		return c.Redirect(AvatarFallback)
	}

	img, ok := h.cache.Get(src)
	if !ok {
		var err error
		img, err = h.fetch(src)
		if err != nil {
			utils.Log.Debug("Avatar fetch failed for %s: %v", src, err)
			return c.Redirect(AvatarFallback)
		}
		h.cache.Set(src, img, h.ttl)
	}

	c.Set(fiber.HeaderContentType, img.contentType)
	c.Set(fiber.HeaderCacheControl, fmt.Sprintf("public, max-age=%d", int(h.ttl.Seconds())))
	return c.Send(img.data)
}

// Allowed reports whether src is an http(s) URL on an allow-listed host
func (h *AvatarHandler) Allowed(src string) bool {
	if src == "" {
		return false
	}
	u, err := url.Parse(src)
	if err != nil || (u.Scheme != "https" && u.Scheme != "http") || u.User != nil {
		return false
	}
	return h.allowed[strings.ToLower(u.Hostname())]
}

func (h *AvatarHandler) fetch(src string) (AvatarImage, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(src)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.SetTimeout(h.timeout)

	if err := h.client.DoRedirects(req, resp, 2); err != nil {
		return AvatarImage{}, err
	}
	if resp.StatusCode() != fasthttp.StatusOK {
		return AvatarImage{}, fmt.Errorf("status %d", resp.StatusCode())
	}
	if ct := string(resp.Header.ContentType()); !utils.IsImage(ct) {
		return AvatarImage{}, fmt.Errorf("unsupported content type %q", ct)
	}

	data, contentType, err := utils.Thumbnail(resp.Body(), h.size)
	if err != nil {
		return AvatarImage{}, err
	}
	return AvatarImage{data: data, contentType: contentType}, nil
}
