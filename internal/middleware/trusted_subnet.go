package middleware

import (
	"net"
	"net/http"
)

const (
	realIPHeader              = "X-Real-IP"
	failedToParseCIDRMessage  = "failed to parse trusted subnet address"
	forbiddenForClientMessage = "forbidden"
)

// TrustedSubnet возвращает посредника, который пропускает только запросы
// с адресом из доверенной подсети. Адрес клиента берется из заголовка X-Real-IP.
// Если подсеть не задана, запросы запрещены.
func TrustedSubnet(subnet string) func(h http.Handler) http.Handler {
	var (
		ipNet    *net.IPNet
		parseErr error
	)
	if subnet != "" {
		_, ipNet, parseErr = net.ParseCIDR(subnet)
	}

	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if parseErr != nil {
				http.Error(w, failedToParseCIDRMessage, http.StatusInternalServerError)
				return
			}

			ip := net.ParseIP(r.Header.Get(realIPHeader))
			if ipNet == nil || ip == nil || !ipNet.Contains(ip) {
				http.Error(w, forbiddenForClientMessage, http.StatusForbidden)
				return
			}

			h.ServeHTTP(w, r)
		})
	}
}
