package handler

import (
	"context"
	"log"
	"maps"
	"slices"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"salon-scheduler/internal/codec"
	"salon-scheduler/internal/model"
)

const ServiceName = "salon.v1.SalonService"

// FullMethod returns the gRPC path for an rpc name, e.g. "/salon.v1.SalonService/Login".
func FullMethod(name string) string {
	return "/" + ServiceName + "/" + name
}

type unary func(h *Handler, ctx context.Context, req []byte) ([]byte, error)

var rpcs = map[string]unary{
	"CreateClient":      withPayload(decodeClientPayload, (*Handler).CreateClient, codec.Client),
	"UpdateClient":      withUpdate(decodeClientPayload, (*Handler).UpdateClient, codec.Client),
	"GetClient":         withID((*Handler).GetClient, codec.Client),
	"ListClients":       withList((*Handler).ListClients, codec.Client),
	"DeleteClient":      withDelete((*Handler).DeleteClient),
	"CreateService":     withPayload(decodeServicePayload, (*Handler).CreateService, codec.Service),
	"UpdateService":     withUpdate(decodeServicePayload, (*Handler).UpdateService, codec.Service),
	"GetService":        withID((*Handler).GetService, codec.Service),
	"ListServices":      withList((*Handler).ListServices, codec.Service),
	"DeleteService":     withDelete((*Handler).DeleteService),
	"CreateAppointment": withPayload(decodeAppointmentPayload, (*Handler).CreateAppointment, codec.Appointment),
	"UpdateAppointment": withUpdate(decodeAppointmentPayload, (*Handler).UpdateAppointment, codec.Appointment),
	"GetAppointment":    withID((*Handler).GetAppointment, codec.Appointment),
	"ListAppointments":  withList((*Handler).ListAppointments, codec.Appointment),
	"DeleteAppointment": withDelete((*Handler).DeleteAppointment),

	"ListAppointmentsByClient":  withFilter(DecodeVarint, (*Handler).ListAppointmentsByClient),
	"ListAppointmentsByService": withFilter(DecodeVarint, (*Handler).ListAppointmentsByService),
	"ListAppointmentsByDate":    withFilter(DecodeString, (*Handler).ListAppointmentsByDate),
	"ListAppointmentsByStatus":  withFilter(DecodeString, (*Handler).ListAppointmentsByStatus),

	"TotalRevenue":       totalRevenue,
	"MostPopularService": withList(single((*Handler).MostPopularService), codec.Service),
	"MostPopularClient":  withList(single((*Handler).MostPopularClient), codec.Client),
	"Login":              login,
}

// Register attaches h to srv under ServiceName.
func Register(srv *grpc.Server, h *Handler) {
	srv.RegisterService(serviceDesc(), h)
}

func serviceDesc() *grpc.ServiceDesc {
	desc := &grpc.ServiceDesc{
		ServiceName: ServiceName,
		HandlerType: (*any)(nil),
		Streams:     []grpc.StreamDesc{},
		Metadata:    "salon/v1/salon.proto",
	}
	for _, name := range slices.Sorted(maps.Keys(rpcs)) {
		desc.Methods = append(desc.Methods, grpc.MethodDesc{
			MethodName: name,
			Handler:    methodHandler(name, rpcs[name]),
		})
	}
	return desc
}

func methodHandler(name string, fn unary) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(RawMessage)
		if err := dec(in); err != nil {
			return nil, err
		}
		call := func(ctx context.Context, req any) (any, error) {
			out, err := fn(srv.(*Handler), ctx, req.(*RawMessage).Data)
			if err != nil {
				return nil, err
			}
			return &RawMessage{Data: out}, nil
		}
		if interceptor == nil {
			return call(ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(name)}
		return interceptor(ctx, in, info, call)
	}
}

func malformed(err error) error {
	return status.Errorf(codes.InvalidArgument, "malformed request: %v", err)
}

func encodeFailed(err error) error {
	log.Printf("encode response: %v", err)
	return status.Error(codes.Internal, "internal error")
}

func respond(b []byte, err error) ([]byte, error) {
	if err != nil {
		return nil, encodeFailed(err)
	}
	return b, nil
}

func withPayload[P, T any](decode func([]byte) (P, error), call func(*Handler, context.Context, P) (*T, error), c codec.Codec[T]) unary {
	return func(h *Handler, ctx context.Context, req []byte) ([]byte, error) {
		p, err := decode(req)
		if err != nil {
			return nil, malformed(err)
		}
		rec, err := call(h, ctx, p)
		if err != nil {
			return nil, err
		}
		return respond(encodeRecord(c, rec))
	}
}

func withUpdate[P, T any](decode func([]byte) (P, error), call func(*Handler, context.Context, uint64, P) (*T, error), c codec.Codec[T]) unary {
	return func(h *Handler, ctx context.Context, req []byte) ([]byte, error) {
		id, p, err := decodeUpdate(req, decode)
		if err != nil {
			return nil, malformed(err)
		}
		rec, err := call(h, ctx, id, p)
		if err != nil {
			return nil, err
		}
		return respond(encodeRecord(c, rec))
	}
}

func withID[T any](call func(*Handler, context.Context, uint64) (*T, error), c codec.Codec[T]) unary {
	return withPayload(DecodeVarint, call, c)
}

func withList[T any](call func(*Handler, context.Context) ([]T, error), c codec.Codec[T]) unary {
	return func(h *Handler, ctx context.Context, _ []byte) ([]byte, error) {
		recs, err := call(h, ctx)
		if err != nil {
			return nil, err
		}
		return respond(encodeRecords(c, recs))
	}
}

func withFilter[A any](decode func([]byte) (A, error), call func(*Handler, context.Context, A) ([]model.Appointment, error)) unary {
	return func(h *Handler, ctx context.Context, req []byte) ([]byte, error) {
		arg, err := decode(req)
		if err != nil {
			return nil, malformed(err)
		}
		recs, err := call(h, ctx, arg)
		if err != nil {
			return nil, err
		}
		return respond(encodeRecords(codec.Appointment, recs))
	}
}

func withDelete(call func(*Handler, context.Context, uint64) error) unary {
	return func(h *Handler, ctx context.Context, req []byte) ([]byte, error) {
		id, err := DecodeVarint(req)
		if err != nil {
			return nil, malformed(err)
		}
		if err := call(h, ctx, id); err != nil {
			return nil, err
		}
		return []byte{}, nil
	}
}

// single adapts an optional-record call to the list encoder: zero or one
// element in field 1.
func single[T any](call func(*Handler, context.Context) (*T, error)) func(*Handler, context.Context) ([]T, error) {
	return func(h *Handler, ctx context.Context) ([]T, error) {
		rec, err := call(h, ctx)
		if err != nil || rec == nil {
			return nil, err
		}
		return []T{*rec}, nil
	}
}

func totalRevenue(h *Handler, ctx context.Context, req []byte) ([]byte, error) {
	q, err := decodeRevenueQuery(req)
	if err != nil {
		return nil, malformed(err)
	}
	total, err := h.TotalRevenue(ctx, q.serviceID, q.date)
	if err != nil {
		return nil, err
	}
	return codec.AppendVarint(nil, 1, total), nil
}

func login(h *Handler, ctx context.Context, req []byte) ([]byte, error) {
	r, err := decodeLogin(req)
	if err != nil {
		return nil, malformed(err)
	}
	tok, err := h.Login(ctx, r.email, r.password)
	if err != nil {
		return nil, err
	}
	return codec.AppendString(nil, 1, tok), nil
}
