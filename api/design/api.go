package design

import (
	. "goa.design/goa/v3/dsl"
)

var _ = API("educhain", func() {
	Title("EDUCHAIN API")
	Description("Backend API for EDUCHAIN - inquiry intake for students, youth, employers, donors and partners")
	Version("1.0.0")
	Server("api", func() {
		Host("localhost", func() {
			URI("http://localhost:5000")
		})
	})
})

// Common error types
var BadRequest = Type("BadRequest", func() {
	Description("Bad request")
	Attribute("message", String, "Error message", func() {
		Example("Missing required fields (name, email, type)")
	})
	Required("message")
})

var Conflict = Type("Conflict", func() {
	Description("An inquiry with the same email already exists")
	Attribute("message", String, "Error message", func() {
		Example("Server error during submission: an inquiry with this email already exists")
	})
	Required("message")
})

var StorageError = Type("StorageError", func() {
	Description("The inquiry could not be stored")
	Attribute("message", String, "Error message", func() {
		Example("Server error during submission: failed to save inquiry")
	})
	Required("message")
})

var MethodNotAllowed = Type("MethodNotAllowed", func() {
	Description("Wrong HTTP method")
	Attribute("message", String, "Error message", func() {
		Example("Method not allowed")
	})
	Required("message")
})

var ServiceUnavailable = Type("ServiceUnavailable", func() {
	Description("Feature not available yet")
	Attribute("message", String, "Error message", func() {
		Example("Donation gateway integration pending. Thank you!")
	})
	Required("message")
})

var MessageResult = ResultType("MessageResult", func() {
	Attribute("message", String, "Status message", func() {
		Example("Inquiry submitted successfully")
	})
	Required("message")
})

// Root banner
var _ = Service("root", func() {
	Description("Liveness banner for the static site")
	Method("show", func() {
		Result(String)
		HTTP(func() {
			GET("/")
			Response(StatusOK, func() {
				ContentType("text/plain")
			})
		})
	})
})

// Health check
var _ = Service("health", func() {
	Description("Health check service")
	Method("check", func() {
		Description("Reports 503 with status unhealthy when the database does not answer")
		Result(HealthResult)
		HTTP(func() {
			GET("/health")
			Response(StatusOK)
		})
	})
})

var HealthResult = ResultType("HealthResult", func() {
	Attribute("status", String, "Service status", func() {
		Enum("healthy", "unhealthy")
		Example("healthy")
	})
	Attribute("service", String, "Service name", func() {
		Example("EDUCHAIN API")
	})
	Attribute("database", String, "Database probe result", func() {
		Example("ok")
	})
	Required("status", "service", "database")
})

// Inquiry intake
var _ = Service("inquiry", func() {
	Description("Inquiry submission service")
	Error("bad_request", BadRequest)
	Error("conflict", Conflict)
	Error("storage_error", StorageError)
	Error("method_not_allowed", MethodNotAllowed)

	Method("submit", func() {
		Description("Store an inquiry. Duplicate emails are reported as a server error.")
		Payload(SubmitInquiryPayload)
		Result(MessageResult)
		Error("bad_request")
		Error("conflict")
		Error("storage_error")
		Error("method_not_allowed")
		HTTP(func() {
			POST("/submit_inquiry")
			Response(StatusOK)
			Response("bad_request", StatusBadRequest)
			Response("conflict", StatusInternalServerError)
			Response("storage_error", StatusInternalServerError)
			Response("method_not_allowed", StatusMethodNotAllowed)
		})
	})
})

var SubmitInquiryPayload = Type("SubmitInquiryPayload", func() {
	Attribute("name", String, "Submitter name", func() {
		MaxLength(100)
		Example("Jane")
	})
	Attribute("email", String, "Contact email, unique across inquiries", func() {
		MaxLength(120)
		Example("jane@x.com")
	})
	Attribute("type", String, "Inquiry category", func() {
		MaxLength(50)
		Example("donor")
	})
	Attribute("message", String, "Free text, empty when omitted", func() {
		Example("Hi")
	})
	Required("name", "email", "type")
})

// Donations
var _ = Service("donation", func() {
	Description("Donation placeholder until a payment gateway is integrated")
	Error("service_unavailable", ServiceUnavailable)
	Error("method_not_allowed", MethodNotAllowed)

	Method("initiate", func() {
		Description("Always answers 503; the request body is ignored")
		Result(MessageResult)
		Error("service_unavailable")
		Error("method_not_allowed")
		HTTP(func() {
			POST("/initiate_donation")
			Response(StatusOK)
			Response("service_unavailable", StatusServiceUnavailable)
			Response("method_not_allowed", StatusMethodNotAllowed)
		})
	})
})
