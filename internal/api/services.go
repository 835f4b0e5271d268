package api

import (
	"context"

	"google.golang.org/grpc"

	"github.com/oggyb/spotme/internal/events"
	"github.com/oggyb/spotme/internal/rpc"
)

// ServicePrefix is shared by every application method name.
const ServicePrefix = "/spotme."

const (
	AuthService     = "spotme.Auth"
	ProfileService  = "spotme.Profile"
	DiscoverService = "spotme.Discover"
	MatchesService  = "spotme.Matches"
)

// PublicMethods may be called without a token.
var PublicMethods = []string{
	"/" + AuthService + "/SignUp",
	"/" + AuthService + "/SignIn",
}

// --- spotme.Auth ---

type AuthServer interface {
	SignUp(context.Context, *SignUpRequest) (*AuthResponse, error)
	SignIn(context.Context, *SignInRequest) (*AuthResponse, error)
	SignOut(context.Context, *Empty) (*Empty, error)
}

var AuthServiceDesc = grpc.ServiceDesc{
	ServiceName: AuthService,
	HandlerType: (*AuthServer)(nil),
	Methods: []grpc.MethodDesc{
		rpc.Unary(AuthService, "SignUp", AuthServer.SignUp),
		rpc.Unary(AuthService, "SignIn", AuthServer.SignIn),
		rpc.Unary(AuthService, "SignOut", AuthServer.SignOut),
	},
	Metadata: "spotme/auth",
}

func RegisterAuthServer(s grpc.ServiceRegistrar, srv AuthServer) {
	s.RegisterService(&AuthServiceDesc, srv)
}

type AuthClient struct{ cc grpc.ClientConnInterface }

func NewAuthClient(cc grpc.ClientConnInterface) *AuthClient { return &AuthClient{cc: cc} }

func (c *AuthClient) SignUp(ctx context.Context, in *SignUpRequest, opts ...grpc.CallOption) (*AuthResponse, error) {
	return rpc.Invoke[AuthResponse](ctx, c.cc, "/"+AuthService+"/SignUp", in, opts...)
}

func (c *AuthClient) SignIn(ctx context.Context, in *SignInRequest, opts ...grpc.CallOption) (*AuthResponse, error) {
	return rpc.Invoke[AuthResponse](ctx, c.cc, "/"+AuthService+"/SignIn", in, opts...)
}

func (c *AuthClient) SignOut(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*Empty, error) {
	return rpc.Invoke[Empty](ctx, c.cc, "/"+AuthService+"/SignOut", in, opts...)
}

// --- spotme.Profile ---

type ProfileServer interface {
	GetProfile(context.Context, *Empty) (*ProfileView, error)
	CompleteOnboarding(context.Context, *OnboardRequest) (*ProfileView, error)
	UpdateProfile(context.Context, *UpdateProfileRequest) (*ProfileView, error)
	UploadPhoto(context.Context, *UploadPhotoRequest) (*ProfileView, error)
	Upgrade(context.Context, *Empty) (*ProfileView, error)
}

var ProfileServiceDesc = grpc.ServiceDesc{
	ServiceName: ProfileService,
	HandlerType: (*ProfileServer)(nil),
	Methods: []grpc.MethodDesc{
		rpc.Unary(ProfileService, "GetProfile", ProfileServer.GetProfile),
		rpc.Unary(ProfileService, "CompleteOnboarding", ProfileServer.CompleteOnboarding),
		rpc.Unary(ProfileService, "UpdateProfile", ProfileServer.UpdateProfile),
		rpc.Unary(ProfileService, "UploadPhoto", ProfileServer.UploadPhoto),
		rpc.Unary(ProfileService, "Upgrade", ProfileServer.Upgrade),
	},
	Metadata: "spotme/profile",
}

func RegisterProfileServer(s grpc.ServiceRegistrar, srv ProfileServer) {
	s.RegisterService(&ProfileServiceDesc, srv)
}

type ProfileClient struct{ cc grpc.ClientConnInterface }

func NewProfileClient(cc grpc.ClientConnInterface) *ProfileClient { return &ProfileClient{cc: cc} }

func (c *ProfileClient) GetProfile(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*ProfileView, error) {
	return rpc.Invoke[ProfileView](ctx, c.cc, "/"+ProfileService+"/GetProfile", in, opts...)
}

func (c *ProfileClient) CompleteOnboarding(ctx context.Context, in *OnboardRequest, opts ...grpc.CallOption) (*ProfileView, error) {
	return rpc.Invoke[ProfileView](ctx, c.cc, "/"+ProfileService+"/CompleteOnboarding", in, opts...)
}

func (c *ProfileClient) UpdateProfile(ctx context.Context, in *UpdateProfileRequest, opts ...grpc.CallOption) (*ProfileView, error) {
	return rpc.Invoke[ProfileView](ctx, c.cc, "/"+ProfileService+"/UpdateProfile", in, opts...)
}

func (c *ProfileClient) UploadPhoto(ctx context.Context, in *UploadPhotoRequest, opts ...grpc.CallOption) (*ProfileView, error) {
	return rpc.Invoke[ProfileView](ctx, c.cc, "/"+ProfileService+"/UploadPhoto", in, opts...)
}

func (c *ProfileClient) Upgrade(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*ProfileView, error) {
	return rpc.Invoke[ProfileView](ctx, c.cc, "/"+ProfileService+"/Upgrade", in, opts...)
}

// --- spotme.Discover ---

type DiscoverServer interface {
	LoadFeed(context.Context, *LoadFeedRequest) (*FeedResponse, error)
	Swipe(context.Context, *SwipeRequest) (*SwipeResponse, error)
	ListLikes(context.Context, *ListLikesRequest) (*ListLikesResponse, error)
	CountLikes(context.Context, *Empty) (*CountLikesResponse, error)
}

var DiscoverServiceDesc = grpc.ServiceDesc{
	ServiceName: DiscoverService,
	HandlerType: (*DiscoverServer)(nil),
	Methods: []grpc.MethodDesc{
		rpc.Unary(DiscoverService, "LoadFeed", DiscoverServer.LoadFeed),
		rpc.Unary(DiscoverService, "Swipe", DiscoverServer.Swipe),
		rpc.Unary(DiscoverService, "ListLikes", DiscoverServer.ListLikes),
		rpc.Unary(DiscoverService, "CountLikes", DiscoverServer.CountLikes),
	},
	Metadata: "spotme/discover",
}

func RegisterDiscoverServer(s grpc.ServiceRegistrar, srv DiscoverServer) {
	s.RegisterService(&DiscoverServiceDesc, srv)
}

type DiscoverClient struct{ cc grpc.ClientConnInterface }

func NewDiscoverClient(cc grpc.ClientConnInterface) *DiscoverClient { return &DiscoverClient{cc: cc} }

func (c *DiscoverClient) LoadFeed(ctx context.Context, in *LoadFeedRequest, opts ...grpc.CallOption) (*FeedResponse, error) {
	return rpc.Invoke[FeedResponse](ctx, c.cc, "/"+DiscoverService+"/LoadFeed", in, opts...)
}

func (c *DiscoverClient) Swipe(ctx context.Context, in *SwipeRequest, opts ...grpc.CallOption) (*SwipeResponse, error) {
	return rpc.Invoke[SwipeResponse](ctx, c.cc, "/"+DiscoverService+"/Swipe", in, opts...)
}

func (c *DiscoverClient) ListLikes(ctx context.Context, in *ListLikesRequest, opts ...grpc.CallOption) (*ListLikesResponse, error) {
	return rpc.Invoke[ListLikesResponse](ctx, c.cc, "/"+DiscoverService+"/ListLikes", in, opts...)
}

func (c *DiscoverClient) CountLikes(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*CountLikesResponse, error) {
	return rpc.Invoke[CountLikesResponse](ctx, c.cc, "/"+DiscoverService+"/CountLikes", in, opts...)
}

// --- spotme.Matches ---

type MatchesServer interface {
	ListMatches(context.Context, *Empty) (*ListMatchesResponse, error)
	SendMessage(context.Context, *SendMessageRequest) (*MessageView, error)
	ListMessages(context.Context, *ListMessagesRequest) (*ListMessagesResponse, error)
	Subscribe(*SubscribeRequest, grpc.ServerStreamingServer[events.Event]) error
}

var MatchesServiceDesc = grpc.ServiceDesc{
	ServiceName: MatchesService,
	HandlerType: (*MatchesServer)(nil),
	Methods: []grpc.MethodDesc{
		rpc.Unary(MatchesService, "ListMatches", MatchesServer.ListMatches),
		rpc.Unary(MatchesService, "SendMessage", MatchesServer.SendMessage),
		rpc.Unary(MatchesService, "ListMessages", MatchesServer.ListMessages),
	},
	Streams: []grpc.StreamDesc{
		rpc.ServerStream("Subscribe", MatchesServer.Subscribe),
	},
	Metadata: "spotme/matches",
}

func RegisterMatchesServer(s grpc.ServiceRegistrar, srv MatchesServer) {
	s.RegisterService(&MatchesServiceDesc, srv)
}

type MatchesClient struct{ cc grpc.ClientConnInterface }

func NewMatchesClient(cc grpc.ClientConnInterface) *MatchesClient { return &MatchesClient{cc: cc} }

func (c *MatchesClient) ListMatches(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*ListMatchesResponse, error) {
	return rpc.Invoke[ListMatchesResponse](ctx, c.cc, "/"+MatchesService+"/ListMatches", in, opts...)
}

func (c *MatchesClient) SendMessage(ctx context.Context, in *SendMessageRequest, opts ...grpc.CallOption) (*MessageView, error) {
	return rpc.Invoke[MessageView](ctx, c.cc, "/"+MatchesService+"/SendMessage", in, opts...)
}

func (c *MatchesClient) ListMessages(ctx context.Context, in *ListMessagesRequest, opts ...grpc.CallOption) (*ListMessagesResponse, error) {
	return rpc.Invoke[ListMessagesResponse](ctx, c.cc, "/"+MatchesService+"/ListMessages", in, opts...)
}

func (c *MatchesClient) Subscribe(ctx context.Context, in *SubscribeRequest, opts ...grpc.CallOption) (grpc.ServerStreamingClient[events.Event], error) {
	return rpc.OpenServerStream[SubscribeRequest, events.Event](
		ctx, c.cc, &MatchesServiceDesc.Streams[0], "/"+MatchesService+"/Subscribe", in, opts...,
	)
}
