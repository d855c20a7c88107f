package api

import (
	"github.com/shaiso/rmqlink/internal/mq"
)

// EndpointResponse — ответ с endpoint.
type EndpointResponse = mq.EndpointInfo

// EndpointsFromMQ конвертирует список endpoint'ов в ответ.
func EndpointsFromMQ(eps []*mq.Endpoint) []EndpointResponse {
	result := make([]EndpointResponse, len(eps))
	for i, ep := range eps {
		result[i] = ep.Info()
	}
	return result
}

// DiagnosisResponse — классифицированный результат RPC.
type DiagnosisResponse struct {
	Reason   string `json:"reason"`
	Code     int    `json:"code,omitempty"`
	Text     string `json:"text,omitempty"`
	MethodID uint32 `json:"method_id,omitempty"`
	Message  string `json:"message"`
}

// DiagnosisFromMQ конвертирует mq.Diagnosis в DiagnosisResponse.
func DiagnosisFromMQ(d mq.Diagnosis) DiagnosisResponse {
	return DiagnosisResponse{
		Reason:   d.Reason.String(),
		Code:     d.Code,
		Text:     d.Text,
		MethodID: d.MethodID,
		Message:  d.String(),
	}
}
