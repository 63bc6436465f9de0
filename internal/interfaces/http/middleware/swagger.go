package middleware

import (
	"net"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopadmin/backoffice/internal/interfaces/http/dto"
)

// SwaggerConfig guards the API documentation endpoint
type SwaggerConfig struct {
	Enabled    bool
	AllowedIPs []string // plain IPs or CIDR ranges, empty allows everyone
}

// SwaggerProtection hides the documentation when disabled and restricts it
// to the configured addresses otherwise
func SwaggerProtection(cfg SwaggerConfig) gin.HandlerFunc {
	allowedIPs, allowedNets := parseAllowList(cfg.AllowedIPs)

	return func(c *gin.Context) {
		if !cfg.Enabled {
			c.AbortWithStatusJSON(http.StatusNotFound,
				dto.Fail(dto.ErrCodeNotFound, "API documentation is not available", getRequestID(c)))
			return
		}
		if len(cfg.AllowedIPs) > 0 && !isIPAllowed(clientIP(c), allowedIPs, allowedNets) {
			c.AbortWithStatusJSON(http.StatusForbidden,
				dto.Fail(dto.ErrCodeForbidden, "Access to API documentation is restricted", getRequestID(c)))
			return
		}
		c.Next()
	}
}

// parseAllowList splits entries into single addresses and networks.
// Unparseable entries are ignored.
func parseAllowList(entries []string) ([]net.IP, []*net.IPNet) {
	var ips []net.IP
	var nets []*net.IPNet
	for _, entry := range entries {
		if strings.Contains(entry, "/") {
			if _, network, err := net.ParseCIDR(entry); err == nil {
				nets = append(nets, network)
			}
			continue
		}
		if ip := net.ParseIP(entry); ip != nil {
			ips = append(ips, ip)
		}
	}
	return ips, nets
}

func clientIP(c *gin.Context) net.IP {
	if ip := net.ParseIP(c.ClientIP()); ip != nil {
		return ip
	}
	host, _, err := net.SplitHostPort(c.Request.RemoteAddr)
	if err != nil {
		host = c.Request.RemoteAddr
	}
	return net.ParseIP(host)
}

func isIPAllowed(ip net.IP, allowedIPs []net.IP, allowedNets []*net.IPNet) bool {
	if ip == nil {
		return false
	}
	for _, allowed := range allowedIPs {
		if allowed.Equal(ip) {
			return true
		}
	}
	for _, network := range allowedNets {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}
