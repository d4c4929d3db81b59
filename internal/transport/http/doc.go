// Package http implements the HTTP request handlers of the campkit web
// service. Handlers stay thin: they parse and validate the request, call a
// service, and format the response.
//
// # Handler Structure
//
// Each handler follows this pattern:
//
//	func (h *Handler) HandleSomething(w http.ResponseWriter, r *http.Request) {
//	    var req SomethingRequest
//	    if err := h.validator.Decode(w, r, &req); err != nil {
//	        h.errorHandler.HandleError(w, r, err)
//	        return
//	    }
//
//	    result, err := h.service.DoSomething(r.Context(), req)
//	    if err != nil {
//	        h.errorHandler.HandleError(w, r, err)
//	        return
//	    }
//
//	    render.JSON(w, r, result)
//	}
//
// Handlers expose their routes through Routes() so the application router
// can mount them under /api.
//
// # Error Handling
//
// All errors are written as RFC 7807 problem details by
// errors.ErrorHandler:
//
//	{
//	    "type": "/errors/backend/unavailable",
//	    "title": "Backend Unavailable",
//	    "status": 502,
//	    "detail": "capacity check failed",
//	    "instance": "/api/activities/7/capacity"
//	}
//
// # Testing
//
// Handlers are tested with httptest against mocked services.
package http
