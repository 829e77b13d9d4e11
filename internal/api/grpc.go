package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"

	"github.com/victornm/quli/internal/errors"
)

const (
	serviceName = "quli.v1.QuizService"

	// CodecName is the content subtype QuizService messages are sent with.
	CodecName = "json"
)

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

// jsonCodec carries the API messages as JSON over gRPC.
type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string {
	return CodecName
}

// QuizServiceServer is the gRPC surface of the API.
type QuizServiceServer interface {
	CreateQuiz(context.Context, *CreateQuizRequest) (*Quiz, error)
	GetQuiz(context.Context, *GetQuizRequest) (*Quiz, error)
	SubmitQuiz(context.Context, *SubmitQuizRequest) (*Result, error)
	GetResult(context.Context, *GetResultRequest) (*Result, error)
	GetLeaderboard(context.Context, *GetLeaderboardRequest) (*Leaderboard, error)
}

var _ QuizServiceServer = (*API)(nil)

var quizServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*QuizServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryMethod("CreateQuiz", QuizServiceServer.CreateQuiz),
		unaryMethod("GetQuiz", QuizServiceServer.GetQuiz),
		unaryMethod("SubmitQuiz", QuizServiceServer.SubmitQuiz),
		unaryMethod("GetResult", QuizServiceServer.GetResult),
		unaryMethod("GetLeaderboard", QuizServiceServer.GetLeaderboard),
	},
	Streams: []grpc.StreamDesc{},
}

func unaryMethod[Req, Resp any](name string, call func(QuizServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	fullMethod := fmt.Sprintf("/%s/%s", serviceName, name)

	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}

			h := func(ctx context.Context, req any) (any, error) {
				resp, err := call(srv.(QuizServiceServer), ctx, req.(*Req))
				if err != nil {
					return nil, grpcError(ctx, fullMethod, err)
				}
				return resp, nil
			}

			if interceptor == nil {
				return h(ctx, in)
			}

			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: fullMethod,
			}
			return interceptor(ctx, in, info, h)
		},
	}
}

func grpcError(ctx context.Context, method string, err error) error {
	e := errors.Convert(err)
	if e.Code == errors.CodeInternal {
		slog.ErrorContext(ctx, "api: grpc call failed", "method", method, "error", err)
	}
	return e
}

// Client calls QuizService over a gRPC connection.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) CreateQuiz(ctx context.Context, req *CreateQuizRequest, opts ...grpc.CallOption) (*Quiz, error) {
	return invoke[Quiz](ctx, c.cc, "CreateQuiz", req, opts)
}

func (c *Client) GetQuiz(ctx context.Context, req *GetQuizRequest, opts ...grpc.CallOption) (*Quiz, error) {
	return invoke[Quiz](ctx, c.cc, "GetQuiz", req, opts)
}

func (c *Client) SubmitQuiz(ctx context.Context, req *SubmitQuizRequest, opts ...grpc.CallOption) (*Result, error) {
	return invoke[Result](ctx, c.cc, "SubmitQuiz", req, opts)
}

func (c *Client) GetResult(ctx context.Context, req *GetResultRequest, opts ...grpc.CallOption) (*Result, error) {
	return invoke[Result](ctx, c.cc, "GetResult", req, opts)
}

func (c *Client) GetLeaderboard(ctx context.Context, req *GetLeaderboardRequest, opts ...grpc.CallOption) (*Leaderboard, error) {
	return invoke[Leaderboard](ctx, c.cc, "GetLeaderboard", req, opts)
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, req any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, fmt.Sprintf("/%s/%s", serviceName, method), req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
