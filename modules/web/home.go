package web

import (
	"github.com/dmitrymomot/weatherapp/handler"
)

func (s *service) home(handler.Context, struct{}) handler.Response {
	return handler.Templ(Home(s.info))
}
